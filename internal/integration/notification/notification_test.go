package notification

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/owninstead/backend/internal/application/adapter"
	"github.com/owninstead/backend/internal/application/usecase/usecasetest"
	"github.com/owninstead/backend/internal/domain/entity"
	domainerror "github.com/owninstead/backend/internal/domain/error"
	"github.com/owninstead/backend/internal/integration/notification/templates"
)

type memoryQueue struct {
	mu        sync.Mutex
	jobs      []*entity.NotificationJob
	createErr error
}

func (q *memoryQueue) Create(_ context.Context, job *entity.NotificationJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.createErr != nil {
		return q.createErr
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *memoryQueue) GetPendingJobs(_ context.Context, limit int) ([]*entity.NotificationJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []*entity.NotificationJob
	for _, j := range q.jobs {
		if j.Status == entity.NotificationStatusPending && len(out) < limit {
			out = append(out, j)
		}
	}
	return out, nil
}

func (q *memoryQueue) Update(context.Context, *entity.NotificationJob) error { return nil }

func (q *memoryQueue) GetByID(_ context.Context, id uuid.UUID) (*entity.NotificationJob, error) {
	for _, j := range q.jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return nil, domainerror.ErrNotificationJobNotFound
}

func (q *memoryQueue) GetByUser(_ context.Context, userID uuid.UUID) ([]*entity.NotificationJob, error) {
	var out []*entity.NotificationJob
	for _, j := range q.jobs {
		if j.UserID == userID {
			out = append(out, j)
		}
	}
	return out, nil
}

func (q *memoryQueue) DeleteOldSentJobs(context.Context, int) (int64, error) { return 0, nil }

type fakePush struct {
	sent []adapter.PushMessage
	err  error
}

func (p *fakePush) Send(_ context.Context, msg adapter.PushMessage) (*adapter.PushResult, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.sent = append(p.sent, msg)
	return &adapter.PushResult{TicketID: fmt.Sprintf("ticket-%d", len(p.sent))}, nil
}

type fakeEmail struct {
	sent []adapter.SendEmailInput
}

func (e *fakeEmail) Send(_ context.Context, input adapter.SendEmailInput) (*adapter.SendEmailResult, error) {
	e.sent = append(e.sent, input)
	return &adapter.SendEmailResult{ResendID: "re_1"}, nil
}

func TestServiceNotify(t *testing.T) {
	userID := uuid.New()
	tests := []struct {
		name         string
		emailEnabled bool
		kind         entity.NotificationKind
		wantChannels []entity.NotificationChannel
	}{
		{"weekly review goes to push and email", true, entity.NotificationWeeklyReview, []entity.NotificationChannel{entity.ChannelPush, entity.ChannelEmail}},
		{"order failed goes to push and email", true, entity.NotificationOrderFailed, []entity.NotificationChannel{entity.ChannelPush, entity.ChannelEmail}},
		{"order submitted is push only", true, entity.NotificationOrderSubmitted, []entity.NotificationChannel{entity.ChannelPush}},
		{"email disabled", false, entity.NotificationWeeklyReview, []entity.NotificationChannel{entity.ChannelPush}},
		{"unknown kind is dropped", true, entity.NotificationKind("payroll"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queue := &memoryQueue{}
			NewService(queue, tt.emailEnabled).Notify(context.Background(), userID, tt.kind, map[string]interface{}{"symbol": "VTI"})

			if len(queue.jobs) != len(tt.wantChannels) {
				t.Fatalf("queued %d jobs, want %d", len(queue.jobs), len(tt.wantChannels))
			}
			for i, ch := range tt.wantChannels {
				if queue.jobs[i].Channel != ch || queue.jobs[i].Kind != tt.kind || queue.jobs[i].UserID != userID {
					t.Errorf("job %d = %+v", i, queue.jobs[i])
				}
			}
		})
	}

	// Queue failures never reach the caller.
	NewService(&memoryQueue{createErr: errors.New("db down")}, true).
		Notify(context.Background(), userID, entity.NotificationWeeklyReview, nil)
}

type workerFixture struct {
	queue    *memoryQueue
	push     *fakePush
	email    *fakeEmail
	profiles *usecasetest.ProfileRepository
	worker   *Worker
	userID   uuid.UUID
}

func newWorkerFixture(t *testing.T, pushToken string) *workerFixture {
	t.Helper()
	renderer, err := templates.NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}

	user := entity.NewUser("ada@example.com", "Ada", "hash")
	profile := entity.NewProfile(user.ID, "VTI", decimal.NewFromInt(100), decimal.NewFromInt(500))
	profile.PushToken = pushToken

	users := usecasetest.NewUserRepository()
	_ = users.Create(context.Background(), user)

	f := &workerFixture{
		queue:    &memoryQueue{},
		push:     &fakePush{},
		email:    &fakeEmail{},
		profiles: usecasetest.NewProfileRepository(profile),
		userID:   user.ID,
	}
	f.worker = NewWorker(f.queue, f.push, f.email, f.profiles, users, renderer, DefaultWorkerConfig())
	return f
}

func (f *workerFixture) enqueue(kind entity.NotificationKind, channel entity.NotificationChannel, params map[string]interface{}) *entity.NotificationJob {
	job := entity.NewNotificationJob(f.userID, kind, channel, params)
	f.queue.jobs = append(f.queue.jobs, job)
	return job
}

func TestWorkerDeliversPush(t *testing.T) {
	f := newWorkerFixture(t, "ExponentPushToken[abc]")
	job := f.enqueue(entity.NotificationOrderSubmitted, entity.ChannelPush, map[string]interface{}{"amount": "18.00", "symbol": "VTI"})

	f.worker.ProcessNow(context.Background())

	if job.Status != entity.NotificationStatusSent || job.ProviderID != "ticket-1" {
		t.Fatalf("unexpected job state %s/%s", job.Status, job.ProviderID)
	}
	if len(f.push.sent) != 1 {
		t.Fatalf("sent %d pushes", len(f.push.sent))
	}
	msg := f.push.sent[0]
	if msg.To != "ExponentPushToken[abc]" || msg.Body != "We placed your $18.00 order for VTI." || msg.Data["kind"] != "order_submitted" {
		t.Errorf("unexpected message %+v", msg)
	}
}

func TestWorkerDeliversEmail(t *testing.T) {
	f := newWorkerFixture(t, "")
	job := f.enqueue(entity.NotificationWeeklyReview, entity.ChannelEmail, map[string]interface{}{
		"total_invest":  "18.00",
		"pending_count": 1,
		"period_start":  "2024-06-09",
	})

	f.worker.ProcessNow(context.Background())

	if job.Status != entity.NotificationStatusSent || job.ProviderID != "re_1" {
		t.Fatalf("unexpected job state %s/%s", job.Status, job.ProviderID)
	}
	if len(f.email.sent) != 1 || f.email.sent[0].To != "ada@example.com" {
		t.Fatalf("unexpected emails %+v", f.email.sent)
	}
	if f.email.sent[0].Subject != "Your week starting 2024-06-09: $18.00 ready to invest" {
		t.Errorf("subject = %q", f.email.sent[0].Subject)
	}
}

func TestWorkerFailures(t *testing.T) {
	tests := []struct {
		name         string
		pushToken    string
		pushErr      error
		wantStatus   entity.NotificationStatus
		wantAttempts int
		wantToken    string
	}{
		{
			name:         "no push token fails permanently",
			pushToken:    "",
			wantStatus:   entity.NotificationStatusFailed,
			wantAttempts: 1,
		},
		{
			name:         "unregistered device clears token",
			pushToken:    "ExponentPushToken[old]",
			pushErr:      permanent("push token is no longer valid", domainerror.ErrDeviceNotRegistered),
			wantStatus:   entity.NotificationStatusFailed,
			wantAttempts: 1,
			wantToken:    "",
		},
		{
			name:         "temporary failure is retried",
			pushToken:    "ExponentPushToken[abc]",
			pushErr:      temporary("push provider unavailable", errors.New("503")),
			wantStatus:   entity.NotificationStatusPending,
			wantAttempts: 1,
			wantToken:    "ExponentPushToken[abc]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWorkerFixture(t, tt.pushToken)
			f.push.err = tt.pushErr
			job := f.enqueue(entity.NotificationStreakBonus, entity.ChannelPush, map[string]interface{}{"streak": 3, "bonus_percent": 30})

			f.worker.ProcessNow(context.Background())

			if job.Status != tt.wantStatus || job.Attempts != tt.wantAttempts {
				t.Errorf("job = %s/%d, want %s/%d", job.Status, job.Attempts, tt.wantStatus, tt.wantAttempts)
			}
			profile, _ := f.profiles.FindByUserID(context.Background(), f.userID)
			if profile.PushToken != tt.wantToken {
				t.Errorf("push token = %q, want %q", profile.PushToken, tt.wantToken)
			}
		})
	}
}

func TestExpoClient(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantTicket    string
		wantPermanent bool
		wantDevice    bool
	}{
		{"ok ticket", http.StatusOK, `{"data":[{"status":"ok","id":"tkt-1"}]}`, "tkt-1", false, false},
		{"device not registered", http.StatusOK, `{"data":[{"status":"error","message":"not a valid token","details":{"error":"DeviceNotRegistered"}}]}`, "", true, true},
		{"bad request", http.StatusBadRequest, `{"errors":[{"code":"VALIDATION_ERROR"}]}`, "", true, false},
		{"server error", http.StatusBadGateway, `oops`, "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Authorization") != "Bearer expo-token" {
					t.Errorf("authorization = %q", r.Header.Get("Authorization"))
				}
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer server.Close()

			result, err := NewExpoClient(server.URL, "expo-token").Send(context.Background(), adapter.PushMessage{
				To:    "ExponentPushToken[abc]",
				Title: "t",
				Body:  "b",
			})

			if tt.wantTicket != "" {
				if err != nil || result.TicketID != tt.wantTicket {
					t.Fatalf("Send = %+v, %v", result, err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if got := domainerror.IsPermanent(err); got != tt.wantPermanent {
				t.Errorf("permanent = %v, want %v", got, tt.wantPermanent)
			}
			if got := errors.Is(err, domainerror.ErrDeviceNotRegistered); got != tt.wantDevice {
				t.Errorf("device not registered = %v, want %v", got, tt.wantDevice)
			}
		})
	}
}
