package app

import (
	"bytes"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
)

type countingJob struct {
	runs atomic.Int32
}

func (j *countingJob) Run()         { j.runs.Add(1) }
func (j *countingJob) Name() string { return "CountingJob" }

type blockingJob struct {
	started chan struct{}
	release chan struct{}
	runs    atomic.Int32
}

func (j *blockingJob) Run() {
	j.runs.Add(1)
	j.started <- struct{}{}
	<-j.release
}

func (j *blockingJob) Name() string { return "BlockingJob" }

func newBufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestJobName(t *testing.T) {
	if got := jobName(&countingJob{}); got != "CountingJob" {
		t.Errorf("jobName(named) = %q, want CountingJob", got)
	}
	if got := jobName(cron.FuncJob(func() {})); got != "cron.FuncJob" {
		t.Errorf("jobName(func) = %q, want cron.FuncJob", got)
	}
}

func TestRecoverJob_CatchesPanic(t *testing.T) {
	log, buf := newBufferLogger()
	job := recoverJob(log, "Exploding")(cron.FuncJob(func() { panic("boom") }))

	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("panic escaped wrapper: %v", r)
			}
		}()
		job.Run()
	}()

	out := buf.String()
	for _, want := range []string{"job panicked", "job_name=Exploding", "panic=boom", "stack="} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestLogJob_LogsExecution(t *testing.T) {
	log, buf := newBufferLogger()
	inner := &countingJob{}
	logJob(log, inner.Name())(inner).Run()

	if inner.runs.Load() != 1 {
		t.Fatalf("inner job runs = %d, want 1", inner.runs.Load())
	}
	out := buf.String()
	for _, want := range []string{"job started", "job finished", "job_name=CountingJob", "execution_id=", "duration="} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestScheduler_AddJob_InvalidSpec(t *testing.T) {
	log, _ := newBufferLogger()
	s := NewScheduler(log)

	err := s.AddJob("not a schedule", &countingJob{})
	if err == nil {
		t.Fatal("AddJob() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "CountingJob") {
		t.Errorf("error %q should name the job", err)
	}
}

func TestScheduler_AddJob_TagsLoggerWithSystem(t *testing.T) {
	log, buf := newBufferLogger()
	s := NewScheduler(log)

	if err := s.AddJob("@every 1m", &countingJob{}); err != nil {
		t.Fatalf("AddJob() error = %v", err)
	}
	if n := len(s.cron.Entries()); n != 1 {
		t.Fatalf("entries = %d, want 1", n)
	}
	out := buf.String()
	if !strings.Contains(out, "system=cron") || !strings.Contains(out, "schedule=\"@every 1m\"") {
		t.Errorf("unexpected registration log: %s", out)
	}
}

func TestScheduler_SkipsOverlappingRuns(t *testing.T) {
	log, buf := newBufferLogger()
	s := NewScheduler(log)
	job := &blockingJob{started: make(chan struct{}), release: make(chan struct{})}

	if err := s.AddJob("@every 1h", job); err != nil {
		t.Fatalf("AddJob() error = %v", err)
	}
	wrapped := s.cron.Entries()[0].Job

	firstDone := make(chan struct{})
	go func() {
		wrapped.Run()
		close(firstDone)
	}()

	select {
	case <-job.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first run did not start")
	}

	secondDone := make(chan struct{})
	go func() {
		wrapped.Run()
		close(secondDone)
	}()

	select {
	case <-secondDone:
	case <-time.After(2 * time.Second):
		t.Fatal("overlapping run was not skipped")
	}

	close(job.release)
	<-firstDone

	if n := job.runs.Load(); n != 1 {
		t.Errorf("runs = %d, want 1", n)
	}
	if !strings.Contains(buf.String(), "skip") {
		t.Errorf("expected skip to be logged: %s", buf.String())
	}
}

func TestScheduler_StartStop(t *testing.T) {
	log, buf := newBufferLogger()
	s := NewScheduler(log)
	if err := s.AddJob("@every 1h", &countingJob{}); err != nil {
		t.Fatalf("AddJob() error = %v", err)
	}

	s.Start()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() did not return")
	}

	out := buf.String()
	if !strings.Contains(out, "scheduler started") || !strings.Contains(out, "scheduler stopped") {
		t.Errorf("missing lifecycle logs: %s", out)
	}
}
