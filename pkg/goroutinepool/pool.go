package goroutinepool

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Task 代表一个需要执行的任务
type Task struct {
	ID       string
	Function func(ctx context.Context) error
	Callback func(error)
	Timeout  time.Duration
}

// Worker 工作协程
type Worker struct {
	ID         int
	TaskChan   chan *Task
	WorkerPool chan chan *Task
	pool       *Pool
}

// Pool goroutine池
type Pool struct {
	WorkerPool chan chan *Task
	TaskQueue  chan *Task
	Workers    []*Worker
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	startOnce  sync.Once
	stopOnce   sync.Once

	// 统计信息
	totalTasks     int64
	completedTasks int64
	failedTasks    int64
	activeTasks    int64
}

// DefaultTaskTimeout 任务未设置超时时使用
const DefaultTaskTimeout = 30 * time.Second

// NewPool 创建新的goroutine池
func NewPool(maxWorkers int, maxQueue int) *Pool {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())

	pool := &Pool{
		WorkerPool: make(chan chan *Task, maxWorkers),
		TaskQueue:  make(chan *Task, maxQueue),
		Workers:    make([]*Worker, maxWorkers),
		ctx:        ctx,
		cancel:     cancel,
	}

	for i := 0; i < maxWorkers; i++ {
		pool.Workers[i] = &Worker{
			ID:         i + 1,
			TaskChan:   make(chan *Task),
			WorkerPool: pool.WorkerPool,
			pool:       pool,
		}
	}

	return pool
}

// Start 启动goroutine池
func (p *Pool) Start() {
	p.startOnce.Do(func() {
		p.wg.Add(1)
		go p.dispatcher()

		for _, worker := range p.Workers {
			p.wg.Add(1)
			go worker.start(&p.wg)
		}

		log.Printf("Goroutine池已启动，工作协程数: %d", len(p.Workers))
	})
}

// Stop 停止goroutine池，最多等待 timeout
func (p *Pool) Stop(timeout time.Duration) {
	p.stopOnce.Do(func() {
		log.Printf("正在停止goroutine池...")
		p.cancel()

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			log.Printf("Goroutine池已安全停止")
		case <-time.After(timeout):
			log.Printf("Goroutine池停止超时，强制退出")
		}
	})
}

// Submit 提交任务到池，队列已满时返回 ErrPoolOverloaded
func (p *Pool) Submit(task *Task) error {
	if task.Timeout == 0 {
		task.Timeout = DefaultTaskTimeout
	}

	if p.ctx.Err() != nil {
		return ErrPoolStopped
	}

	atomic.AddInt64(&p.totalTasks, 1)

	select {
	case p.TaskQueue <- task:
		return nil
	default:
		atomic.AddInt64(&p.failedTasks, 1)
		return ErrPoolOverloaded
	}
}

// SubmitWithCallback 提交带回调的任务
func (p *Pool) SubmitWithCallback(id string, fn func(ctx context.Context) error, callback func(error)) error {
	return p.Submit(&Task{
		ID:       id,
		Function: fn,
		Callback: callback,
	})
}

// dispatcher 任务分发器
func (p *Pool) dispatcher() {
	defer p.wg.Done()

	for {
		select {
		case task := <-p.TaskQueue:
			select {
			case workerTaskChan := <-p.WorkerPool:
				workerTaskChan <- task
			case <-p.ctx.Done():
				return
			}
		case <-p.ctx.Done():
			return
		}
	}
}

// start 启动工作协程
func (w *Worker) start(wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		// 将当前工作协程注册到池中
		select {
		case w.WorkerPool <- w.TaskChan:
			select {
			case task := <-w.TaskChan:
				w.executeTask(task)
			case <-w.pool.ctx.Done():
				return
			}
		case <-w.pool.ctx.Done():
			return
		}
	}
}

// executeTask 执行任务
func (w *Worker) executeTask(task *Task) {
	p := w.pool
	atomic.AddInt64(&p.activeTasks, 1)
	defer atomic.AddInt64(&p.activeTasks, -1)

	ctx, cancel := context.WithTimeout(p.ctx, task.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- NewTaskPanicError(r)
			}
		}()
		done <- task.Function(ctx)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	if err != nil {
		atomic.AddInt64(&p.failedTasks, 1)
		log.Printf("[ERROR] 任务 %s 执行失败: %v", task.ID, err)
	} else {
		atomic.AddInt64(&p.completedTasks, 1)
	}

	if task.Callback != nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("任务回调发生panic: %v", r)
				}
			}()
			task.Callback(err)
		}()
	}
}

// GetStats 获取统计信息
func (p *Pool) GetStats() map[string]int64 {
	return map[string]int64{
		"total_tasks":     atomic.LoadInt64(&p.totalTasks),
		"completed_tasks": atomic.LoadInt64(&p.completedTasks),
		"failed_tasks":    atomic.LoadInt64(&p.failedTasks),
		"active_tasks":    atomic.LoadInt64(&p.activeTasks),
		"worker_count":    int64(len(p.Workers)),
	}
}

// 错误定义
var (
	ErrPoolOverloaded = NewPoolError("goroutine pool is overloaded")
	ErrPoolStopped    = NewPoolError("goroutine pool is stopped")
)

type PoolError struct {
	Message string
}

func (e *PoolError) Error() string {
	return e.Message
}

func NewPoolError(message string) *PoolError {
	return &PoolError{Message: message}
}

type TaskPanicError struct {
	Panic interface{}
}

func (e *TaskPanicError) Error() string {
	return fmt.Sprintf("task panic: %v", e.Panic)
}

func NewTaskPanicError(panic interface{}) *TaskPanicError {
	return &TaskPanicError{Panic: panic}
}
