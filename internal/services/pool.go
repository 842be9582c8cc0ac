package services

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"alfredoptarigan/cv-analyzer/internal/models"
)

// AnalysisPool bounds how many analyses run concurrently. Every request
// still blocks its caller until its own result is ready; the pool only caps
// in-flight provider work.
type AnalysisPool interface {
	Start()
	Submit(ctx context.Context, req *models.AnalysisRequest) (*models.AnalysisResult, error)
	Shutdown()
}

type analysisJob struct {
	ctx    context.Context
	req    *models.AnalysisRequest
	result chan jobResult
}

type jobResult struct {
	result *models.AnalysisResult
	err    error
}

type analysisPool struct {
	service     AnalyzerService
	concurrency int
	jobs        chan *analysisJob
	wg          sync.WaitGroup
	once        sync.Once
}

func NewAnalysisPool(service AnalyzerService, concurrency int) AnalysisPool {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &analysisPool{
		service:     service,
		concurrency: concurrency,
		jobs:        make(chan *analysisJob),
	}
}

// Start implements AnalysisPool.
func (p *analysisPool) Start() {
	for i := 0; i < p.concurrency; i++ {
		p.wg.Add(1)
		go p.worker(i + 1)
	}
	log.Printf("✅ Analysis pool started with %d worker(s)\n", p.concurrency)
}

func (p *analysisPool) worker(id int) {
	defer p.wg.Done()
	for job := range p.jobs {
		if err := job.ctx.Err(); err != nil {
			job.result <- jobResult{err: fmt.Errorf("request abandoned before analysis started: %w", err)}
			continue
		}
		result, err := p.service.Analyze(job.ctx, job.req)
		job.result <- jobResult{result: result, err: err}
	}
	log.Printf("🔄 Analysis worker %d stopped\n", id)
}

// Submit implements AnalysisPool. Blocks until a worker picks the job up and
// finishes it, or the caller's context ends while still queued.
func (p *analysisPool) Submit(ctx context.Context, req *models.AnalysisRequest) (*models.AnalysisResult, error) {
	job := &analysisJob{
		ctx:    ctx,
		req:    req,
		result: make(chan jobResult, 1),
	}

	select {
	case p.jobs <- job:
	case <-ctx.Done():
		return nil, fmt.Errorf("request abandoned while queued: %w", ctx.Err())
	}

	res := <-job.result
	return res.result, res.err
}

// Shutdown implements AnalysisPool. Waits for in-flight analyses to finish.
func (p *analysisPool) Shutdown() {
	p.once.Do(func() {
		close(p.jobs)
	})
	p.wg.Wait()
}
