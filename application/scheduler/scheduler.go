// application/scheduler/scheduler.go
package scheduler

import (
	"context"
	"sync"
	"time"

	"neko-signal-bot/pkg/logger"
)

// Schedule определяет расписание задачи
type Schedule struct {
	// DailyAt: задача запускается раз в день в заданное UTC время
	// Every: задача запускается с заданным интервалом от начала прошлого запуска
	kind     scheduleKind
	hour     int
	minute   int
	interval time.Duration
}

type scheduleKind int

const (
	kindDaily    scheduleKind = iota // раз в сутки в HH:MM UTC
	kindInterval                     // каждые N единиц времени
)

const (
	defaultJobTimeout = 5 * time.Minute
	maxIdleWait       = 30 * time.Second
)

// DailyAt создает расписание "каждый день в HH:MM UTC"
func DailyAt(hour, minute int) Schedule {
	return Schedule{kind: kindDaily, hour: hour, minute: minute}
}

// Every создает расписание "каждые N времени"
func Every(d time.Duration) Schedule {
	return Schedule{kind: kindInterval, interval: d}
}

// nextRun вычисляет время следующего запуска относительно from
func (s Schedule) nextRun(from time.Time) time.Time {
	from = from.UTC()
	switch s.kind {
	case kindDaily:
		next := time.Date(from.Year(), from.Month(), from.Day(), s.hour, s.minute, 0, 0, time.UTC)
		if !next.After(from) {
			next = next.Add(24 * time.Hour)
		}
		return next
	case kindInterval:
		return from.Add(s.interval)
	default:
		return from.Add(24 * time.Hour)
	}
}

// Job описывает одну планируемую задачу
type Job struct {
	Name        string
	Description string
	Schedule    Schedule
	Handler     func(ctx context.Context) error
	// Timeout ограничивает один запуск (0 = 5 минут)
	Timeout time.Duration
	// RunOnStart запускает задачу сразу при старте планировщика
	RunOnStart bool

	mu      sync.Mutex
	running bool
	nextRun time.Time
	lastRun time.Time
	lastErr error
	runs    int
	skipped int
}

// Status возвращает текущее состояние задачи
func (j *Job) Status() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobStatus{
		Name:        j.Name,
		Description: j.Description,
		NextRun:     j.nextRun,
		LastRun:     j.lastRun,
		LastErr:     j.lastErr,
		Runs:        j.runs,
		Skipped:     j.skipped,
		Running:     j.running,
	}
}

// JobStatus снапшот состояния задачи
type JobStatus struct {
	Name        string
	Description string
	NextRun     time.Time
	LastRun     time.Time
	LastErr     error
	Runs        int
	Skipped     int
	Running     bool
}

// Scheduler управляет периодическими задачами приложения.
// Запуски одной задачи никогда не перекрываются.
type Scheduler struct {
	jobs   []*Job
	mu     sync.RWMutex
	now    func() time.Time
	cancel context.CancelFunc
	wakeup chan struct{}
	wg     sync.WaitGroup
}

// New создает новый планировщик
func New() *Scheduler {
	return &Scheduler{
		now:    time.Now,
		wakeup: make(chan struct{}, 1),
	}
}

// Register добавляет задачу в планировщик.
// Должен вызываться до Start().
func (s *Scheduler) Register(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	if job.RunOnStart {
		job.nextRun = now
	} else {
		job.nextRun = job.Schedule.nextRun(now)
	}
	s.jobs = append(s.jobs, job)

	logger.Info("📋 [Scheduler] Зарегистрирована задача %q, первый запуск в %s",
		job.Name, job.nextRun.Format("2006-01-02 15:04:05 UTC"))
}

// Start запускает цикл планировщика в фоновой горутине.
// Отмена ctx или Stop() останавливают цикл.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(ctx)
	}()
	logger.Info("✅ [Scheduler] Запущен (%d задач)", len(s.jobs))
}

// Stop останавливает планировщик и ждёт завершения текущих задач
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	logger.Info("🛑 [Scheduler] Остановлен")
}

// Jobs возвращает статус всех задач
func (s *Scheduler) Jobs() []JobStatus {
	jobs := s.snapshotJobs()
	statuses := make([]JobStatus, len(jobs))
	for i, j := range jobs {
		statuses[i] = j.Status()
	}
	return statuses
}

func (s *Scheduler) snapshotJobs() []*Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	jobs := make([]*Job, len(s.jobs))
	copy(jobs, s.jobs)
	return jobs
}

// loop спит до ближайшего запуска, затем проверяет задачи
func (s *Scheduler) loop(ctx context.Context) {
	for {
		s.tick(ctx)

		timer := time.NewTimer(s.untilNext())
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-s.wakeup:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// untilNext - пауза до ближайшего nextRun среди незанятых задач
func (s *Scheduler) untilNext() time.Duration {
	now := s.now().UTC()
	wait := maxIdleWait
	for _, job := range s.snapshotJobs() {
		job.mu.Lock()
		next, running := job.nextRun, job.running
		job.mu.Unlock()
		if running {
			continue
		}
		if d := next.Sub(now); d < wait {
			wait = d
		}
	}
	if wait < 0 {
		wait = 0
	}
	return wait
}

// tick запускает задачи, у которых наступило время
func (s *Scheduler) tick(ctx context.Context) {
	now := s.now().UTC()
	for _, job := range s.snapshotJobs() {
		job.mu.Lock()
		due := !now.Before(job.nextRun)
		if due && job.running {
			// прошлый запуск ещё идёт: тик пропускается
			job.skipped++
			due = false
		}
		if due {
			job.running = true
		}
		job.mu.Unlock()

		if due {
			s.wg.Add(1)
			go s.run(ctx, job)
		}
	}
}

// run выполняет одну задачу и обновляет её состояние
func (s *Scheduler) run(ctx context.Context, job *Job) {
	defer s.wg.Done()

	timeout := job.Timeout
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger.Debug("▶️  [Scheduler] Запуск задачи %q", job.Name)
	start := s.now().UTC()

	err := job.Handler(runCtx)

	elapsed := s.now().UTC().Sub(start)

	job.mu.Lock()
	job.lastRun = start
	job.lastErr = err
	job.runs++
	job.running = false
	job.nextRun = job.Schedule.nextRun(start)
	if job.Schedule.kind == kindDaily {
		job.nextRun = job.Schedule.nextRun(s.now().UTC())
	}
	nextRun := job.nextRun
	job.mu.Unlock()

	// будим цикл: если задача переработала, следующий запуск уже должен начаться
	select {
	case s.wakeup <- struct{}{}:
	default:
	}

	if err != nil {
		logger.Error("❌ [Scheduler] Задача %q завершилась с ошибкой за %v: %v", job.Name, elapsed, err)
		return
	}
	logger.Debug("✅ [Scheduler] Задача %q выполнена за %v. Следующий запуск: %s",
		job.Name, elapsed, nextRun.Format("2006-01-02 15:04:05 UTC"))
}
