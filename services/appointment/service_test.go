package appointment

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"bookline/models"
	"bookline/services/notification"
	"bookline/services/reminder"
	"bookline/services/rules"
	"bookline/services/token"
	"bookline/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// --- fakes -----------------------------------------------------------------

type fakeApptRepo struct {
	appts map[string]*models.Appointment
}

func newFakeApptRepo() *fakeApptRepo {
	return &fakeApptRepo{appts: make(map[string]*models.Appointment)}
}

func (f *fakeApptRepo) Create(a *models.Appointment) error {
	cp := *a
	f.appts[a.ID] = &cp
	return nil
}

func (f *fakeApptRepo) GetByID(_ context.Context, id string) (*models.Appointment, error) {
	a, ok := f.appts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeApptRepo) UpdateSetFields(id string, fields bson.M) error {
	a, ok := f.appts[id]
	if !ok {
		return fmt.Errorf("appointment %s not found", id)
	}
	for key, value := range fields {
		switch key {
		case "status":
			a.Status = value.(models.AppointmentStatus)
		case "scheduledAt":
			t := value.(time.Time)
			a.ScheduledAt = &t
		case "confirmedAt":
			t := value.(time.Time)
			a.ConfirmedAt = &t
		case "cancelledAt":
			t := value.(time.Time)
			a.CancelledAt = &t
		case "notes":
			a.Notes = value.(string)
		}
	}
	return nil
}

func (f *fakeApptRepo) Delete(id string) error {
	delete(f.appts, id)
	return nil
}

func (f *fakeApptRepo) ListByStatus(_ context.Context, status models.AppointmentStatus, _, _ int64) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range f.appts {
		if status == "" || a.Status == status {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeApptRepo) ListScheduledBetween(_ context.Context, from, to time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range f.appts {
		if a.ScheduledAt == nil {
			continue
		}
		if (a.Status == models.StatusConfirmed || a.Status == models.StatusRescheduled) &&
			!a.ScheduledAt.Before(from) && a.ScheduledAt.Before(to) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeApptRepo) CountByStatus(_ context.Context) (map[models.AppointmentStatus]int64, error) {
	counts := make(map[models.AppointmentStatus]int64)
	for _, a := range f.appts {
		counts[a.Status]++
	}
	return counts, nil
}

type fakeContactRepo struct {
	contacts map[string]*models.Contact
}

func newFakeContactRepo() *fakeContactRepo {
	return &fakeContactRepo{contacts: make(map[string]*models.Contact)}
}

func (f *fakeContactRepo) UpsertByEmail(_ context.Context, c *models.Contact) (*models.Contact, error) {
	for _, existing := range f.contacts {
		if existing.Email == c.Email {
			existing.FirstName = c.FirstName
			existing.LastName = c.LastName
			cp := *existing
			return &cp, nil
		}
	}
	cp := *c
	f.contacts[c.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeContactRepo) GetByID(_ context.Context, id string) (*models.Contact, error) {
	c, ok := f.contacts[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

type fakeRemRepo struct {
	records map[string]*models.Reminder
}

func newFakeRemRepo() *fakeRemRepo {
	return &fakeRemRepo{records: make(map[string]*models.Reminder)}
}

func (f *fakeRemRepo) GetByAppointmentID(_ context.Context, id string) (*models.Reminder, error) {
	r, ok := f.records[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRemRepo) Upsert(_ context.Context, r *models.Reminder) error {
	cp := *r
	f.records[r.AppointmentID] = &cp
	return nil
}

func (f *fakeRemRepo) DeleteByAppointmentID(_ context.Context, id string) error {
	delete(f.records, id)
	return nil
}

func (f *fakeRemRepo) MarkSent(_ context.Context, id string, at time.Time) error {
	if r, ok := f.records[id]; ok {
		r.SentAt = &at
	}
	return nil
}

type fakeJobScheduler struct {
	jobs   map[string]time.Time
	nextID int
}

func newFakeJobScheduler() *fakeJobScheduler {
	return &fakeJobScheduler{jobs: make(map[string]time.Time)}
}

func (f *fakeJobScheduler) Schedule(_ context.Context, appointmentID string, fireAt time.Time) (string, error) {
	f.nextID++
	ref := fmt.Sprintf("job-%d", f.nextID)
	f.jobs[ref] = fireAt
	return ref, nil
}

func (f *fakeJobScheduler) Cancel(_ context.Context, ref string) error {
	if _, ok := f.jobs[ref]; !ok {
		return reminder.ErrJobNotFound
	}
	delete(f.jobs, ref)
	return nil
}

type fakeRegistry struct {
	created []models.ActionToken
	nextID  int
}

func (f *fakeRegistry) Create(_ context.Context, entityType, entityID, action string) (string, error) {
	f.nextID++
	secret := fmt.Sprintf("action-%d", f.nextID)
	f.created = append(f.created, models.ActionToken{
		Token:      secret,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
	})
	return secret, nil
}

func (f *fakeRegistry) Verify(context.Context, string) (token.VerifyResult, error) {
	return token.VerifyResult{}, nil
}

func (f *fakeRegistry) VerifyAndConsume(context.Context, string) (*models.ActionToken, error) {
	return nil, nil
}

type fakeNotifier struct {
	sent    []string
	failAll bool
}

func (f *fakeNotifier) record(kind string) error {
	if f.failAll {
		return errors.New("smtp down")
	}
	f.sent = append(f.sent, kind)
	return nil
}

func (f *fakeNotifier) Send(context.Context, string, string, string) error {
	return f.record("raw")
}
func (f *fakeNotifier) SendAppointmentRequested(context.Context, *models.Contact, *models.Appointment) error {
	return f.record("requested")
}
func (f *fakeNotifier) SendAdminActionRequest(context.Context, *models.Contact, *models.Appointment, notification.ActionLinks) error {
	return f.record("adminRequest")
}
func (f *fakeNotifier) SendAppointmentConfirmed(context.Context, *models.Contact, *models.Appointment) error {
	return f.record("confirmed")
}
func (f *fakeNotifier) SendAppointmentCancelled(context.Context, *models.Contact, *models.Appointment) error {
	return f.record("cancelled")
}
func (f *fakeNotifier) SendRescheduleProposed(context.Context, *models.Contact, *models.Appointment) error {
	return f.record("rescheduleProposed")
}
func (f *fakeNotifier) SendReminder(context.Context, *models.Contact, *models.Appointment) error {
	return f.record("reminder")
}

// --- harness ---------------------------------------------------------------

type harness struct {
	svc      *DefaultAppointmentService
	appts    *fakeApptRepo
	contacts *fakeContactRepo
	remRepo  *fakeRemRepo
	jobs     *fakeJobScheduler
	notifier *fakeNotifier
	registry *fakeRegistry
	now      time.Time
	paris    *time.Location
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Fatalf("failed to load zone: %v", err)
	}
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, paris)
	clock := utils.FixedClock{Instant: now}
	tz, err := utils.NewTimeZoneConverter("Europe/Paris")
	if err != nil {
		t.Fatalf("failed to build converter: %v", err)
	}

	appts := newFakeApptRepo()
	contacts := newFakeContactRepo()
	remRepo := newFakeRemRepo()
	jobs := newFakeJobScheduler()
	notifier := &fakeNotifier{}
	registry := &fakeRegistry{}

	coord := reminder.NewDefaultCoordinator(remRepo, jobs, clock, zap.NewNop())
	svc := NewDefaultAppointmentService(
		appts, contacts, coord, registry, notifier,
		clock, tz, "http://localhost:8080", nil, zap.NewNop(),
	)

	return &harness{
		svc:      svc,
		appts:    appts,
		contacts: contacts,
		remRepo:  remRepo,
		jobs:     jobs,
		notifier: notifier,
		registry: registry,
		now:      now,
		paris:    paris,
	}
}

func (h *harness) createPending(t *testing.T) *models.Appointment {
	t.Helper()
	res, err := h.svc.Create(context.Background(), CreateRequest{
		FirstName:    "Ada",
		LastName:     "Martin",
		Email:        "ada@example.com",
		ConsentGiven: true,
		RequestedAt:  "2026-03-12T10:00:00",
		Timezone:     "Europe/Paris",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return res.Appointment
}

// --- tests -----------------------------------------------------------------

func TestCreatePendingWithTokenPair(t *testing.T) {
	h := newHarness(t)
	appt := h.createPending(t)

	if appt.Status != models.StatusPending {
		t.Fatalf("status = %s, want pending", appt.Status)
	}
	if appt.ConfirmationToken == "" || appt.CancellationToken == "" {
		t.Fatal("token pair not minted")
	}
	if appt.ConfirmationToken == appt.CancellationToken {
		t.Fatal("tokens must differ")
	}
	if len(h.registry.created) != 3 {
		t.Fatalf("expected 3 admin action tokens, got %d", len(h.registry.created))
	}
	if len(h.jobs.jobs) != 0 {
		t.Fatal("no reminder should exist before confirmation")
	}
}

func TestCreateRejectsOutOfHorizon(t *testing.T) {
	h := newHarness(t)

	for _, requested := range []string{
		"2026-03-10T23:59:00", // later today
		"2026-05-20T10:00:00", // beyond one month
		"not-a-date",
	} {
		_, err := h.svc.Create(context.Background(), CreateRequest{
			Email:       "ada@example.com",
			RequestedAt: requested,
			Timezone:    "Europe/Paris",
		})
		var dateErr *rules.InvalidDateError
		if !errors.As(err, &dateErr) {
			t.Errorf("requestedAt=%q: expected InvalidDateError, got %v", requested, err)
		}
	}
}

func TestConfirmSchedulesReminder(t *testing.T) {
	h := newHarness(t)
	appt := h.createPending(t)

	scheduledAt := h.now.Add(48 * time.Hour)
	res, err := h.svc.Confirm(context.Background(), appt.ID, scheduledAt)
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if res.Appointment.Status != models.StatusConfirmed {
		t.Fatalf("status = %s", res.Appointment.Status)
	}
	if res.Appointment.ConfirmedAt == nil {
		t.Fatal("confirmedAt not set")
	}

	if len(h.jobs.jobs) != 1 {
		t.Fatalf("expected 1 reminder job, got %d", len(h.jobs.jobs))
	}
	record := h.remRepo.records[appt.ID]
	if record == nil {
		t.Fatal("reminder record missing")
	}
	if !record.DueAt.Equal(scheduledAt.Add(-24 * time.Hour)) {
		t.Fatalf("dueAt = %v", record.DueAt)
	}
}

func TestConfirmWithinLeadTimeSchedulesNoJob(t *testing.T) {
	h := newHarness(t)
	appt := h.createPending(t)

	if _, err := h.svc.Confirm(context.Background(), appt.ID, h.now.Add(23*time.Hour)); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if len(h.jobs.jobs) != 0 {
		t.Fatalf("expected 0 jobs for a <24h slot, got %d", len(h.jobs.jobs))
	}
	if h.remRepo.records[appt.ID] == nil {
		t.Fatal("reminder record should exist with empty providerRef")
	}
	if h.remRepo.records[appt.ID].ProviderRef != "" {
		t.Fatal("providerRef should be empty")
	}
}

func TestConfirmIllegalFromTerminal(t *testing.T) {
	h := newHarness(t)
	appt := h.createPending(t)
	h.appts.appts[appt.ID].Status = models.StatusCancelled

	_, err := h.svc.Confirm(context.Background(), appt.ID, h.now.Add(48*time.Hour))
	var stateErr *InvalidStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
}

func TestConfirmByToken(t *testing.T) {
	h := newHarness(t)
	appt := h.createPending(t)

	// No slot proposed yet.
	_, err := h.svc.ConfirmByToken(context.Background(), appt.ID, appt.ConfirmationToken)
	var schedErr *MissingScheduleError
	if !errors.As(err, &schedErr) {
		t.Fatalf("expected MissingScheduleError, got %v", err)
	}

	// Admin proposes a slot on the pending appointment.
	slot := time.Date(2026, 3, 12, 10, 0, 0, 0, h.paris)
	if _, err := h.svc.Reschedule(context.Background(), appt.ID, slot); err != nil {
		t.Fatalf("Reschedule failed: %v", err)
	}

	_, err = h.svc.ConfirmByToken(context.Background(), appt.ID, "wrong-token")
	var tokenErr *InvalidTokenError
	if !errors.As(err, &tokenErr) {
		t.Fatalf("expected InvalidTokenError, got %v", err)
	}

	res, err := h.svc.ConfirmByToken(context.Background(), appt.ID, appt.ConfirmationToken)
	if err != nil {
		t.Fatalf("ConfirmByToken failed: %v", err)
	}
	if res.Appointment.Status != models.StatusConfirmed {
		t.Fatalf("status = %s", res.Appointment.Status)
	}
	if !res.Appointment.ScheduledAt.Equal(slot) {
		t.Fatalf("scheduledAt = %v, want %v", res.Appointment.ScheduledAt, slot)
	}
}

func TestCancelWrongTokenAlwaysFails(t *testing.T) {
	h := newHarness(t)

	for _, status := range []models.AppointmentStatus{
		models.StatusPending,
		models.StatusConfirmed,
		models.StatusRescheduled,
		models.StatusCompleted,
	} {
		appt := h.createPending(t)
		h.appts.appts[appt.ID].Status = status

		_, err := h.svc.CancelByToken(context.Background(), appt.ID, "wrong")
		var tokenErr *InvalidTokenError
		if !errors.As(err, &tokenErr) {
			t.Errorf("status %s: expected InvalidTokenError, got %v", status, err)
		}
	}
}

func TestCancelWindowRules(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// Confirmed at +23h: inside the window, blocked.
	appt := h.createPending(t)
	if _, err := h.svc.Confirm(ctx, appt.ID, h.now.Add(23*time.Hour)); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	_, err := h.svc.CancelByToken(ctx, appt.ID, appt.CancellationToken)
	var windowErr *rules.CancellationWindowError
	if !errors.As(err, &windowErr) {
		t.Fatalf("expected CancellationWindowError, got %v", err)
	}

	// Confirmed at +25h: allowed.
	appt2 := h.createPending(t)
	if _, err := h.svc.Confirm(ctx, appt2.ID, h.now.Add(25*time.Hour)); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	res, err := h.svc.CancelByToken(ctx, appt2.ID, appt2.CancellationToken)
	if err != nil {
		t.Fatalf("CancelByToken failed: %v", err)
	}
	if res.Appointment.Status != models.StatusCancelled {
		t.Fatalf("status = %s", res.Appointment.Status)
	}
	if res.Appointment.CancelledAt == nil {
		t.Fatal("cancelledAt not set")
	}

	// Rescheduled at +23h: exempt from the window, allowed.
	appt3 := h.createPending(t)
	scheduled := h.now.Add(23 * time.Hour)
	h.appts.appts[appt3.ID].Status = models.StatusRescheduled
	h.appts.appts[appt3.ID].ScheduledAt = &scheduled
	if _, err := h.svc.CancelByToken(ctx, appt3.ID, appt3.CancellationToken); err != nil {
		t.Fatalf("rescheduled cancel should bypass window: %v", err)
	}
}

func TestCancelRemovesReminderJob(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	appt := h.createPending(t)

	if _, err := h.svc.Confirm(ctx, appt.ID, h.now.Add(48*time.Hour)); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if len(h.jobs.jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(h.jobs.jobs))
	}

	if _, err := h.svc.CancelByToken(ctx, appt.ID, appt.CancellationToken); err != nil {
		t.Fatalf("CancelByToken failed: %v", err)
	}
	if len(h.jobs.jobs) != 0 {
		t.Fatalf("expected 0 jobs after cancel, got %d", len(h.jobs.jobs))
	}
	if h.remRepo.records[appt.ID] != nil {
		t.Fatal("reminder record should be deleted")
	}
}

func TestCanCancelFigures(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	appt := h.createPending(t)
	check, err := h.svc.CanCancel(ctx, appt.ID, appt.CancellationToken)
	if err != nil {
		t.Fatalf("CanCancel failed: %v", err)
	}
	if !check.Allowed {
		t.Fatal("pending must always be cancellable")
	}

	if _, err := h.svc.Confirm(ctx, appt.ID, h.now.Add(23*time.Hour)); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	check, _ = h.svc.CanCancel(ctx, appt.ID, appt.CancellationToken)
	if check.Allowed {
		t.Fatal("confirmed at +23h must not be cancellable")
	}
	if check.HoursRemaining != 23 {
		t.Fatalf("hoursRemaining = %v, want 23", check.HoursRemaining)
	}

	if _, err := h.svc.CanCancel(ctx, appt.ID, "wrong"); err == nil {
		t.Fatal("CanCancel must still require the token")
	}
}

func TestAcceptRescheduleRefreshesReminder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	appt := h.createPending(t)

	if _, err := h.svc.Confirm(ctx, appt.ID, h.now.Add(48*time.Hour)); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}

	proposed := time.Date(2026, 3, 13, 14, 0, 0, 0, h.paris)
	if _, err := h.svc.ProposeReschedule(ctx, appt.ID, proposed); err != nil {
		t.Fatalf("ProposeReschedule failed: %v", err)
	}
	if len(h.jobs.jobs) != 0 {
		t.Fatalf("proposal should drop the old reminder, got %d jobs", len(h.jobs.jobs))
	}

	// Accept with the wrong flow first.
	_, err := h.svc.AcceptReschedule(ctx, appt.ID, "wrong")
	var tokenErr *InvalidTokenError
	if !errors.As(err, &tokenErr) {
		t.Fatalf("expected InvalidTokenError, got %v", err)
	}

	res, err := h.svc.AcceptReschedule(ctx, appt.ID, appt.ConfirmationToken)
	if err != nil {
		t.Fatalf("AcceptReschedule failed: %v", err)
	}
	if res.Appointment.Status != models.StatusConfirmed {
		t.Fatalf("status = %s", res.Appointment.Status)
	}
	if !res.Appointment.ScheduledAt.Equal(proposed) {
		t.Fatal("accept must keep the proposed slot")
	}
	if len(h.jobs.jobs) != 1 {
		t.Fatalf("expected exactly 1 job after accept, got %d", len(h.jobs.jobs))
	}
}

func TestAcceptRescheduleOnlyFromRescheduled(t *testing.T) {
	h := newHarness(t)
	appt := h.createPending(t)

	_, err := h.svc.AcceptReschedule(context.Background(), appt.ID, appt.ConfirmationToken)
	var stateErr *InvalidStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
}

func TestRejectRescheduleCancels(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	appt := h.createPending(t)

	if _, err := h.svc.Confirm(ctx, appt.ID, h.now.Add(48*time.Hour)); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	proposed := time.Date(2026, 3, 13, 14, 0, 0, 0, h.paris)
	if _, err := h.svc.ProposeReschedule(ctx, appt.ID, proposed); err != nil {
		t.Fatalf("ProposeReschedule failed: %v", err)
	}

	res, err := h.svc.RejectReschedule(ctx, appt.ID, appt.CancellationToken)
	if err != nil {
		t.Fatalf("RejectReschedule failed: %v", err)
	}
	if res.Appointment.Status != models.StatusCancelled {
		t.Fatalf("status = %s", res.Appointment.Status)
	}
	if len(h.jobs.jobs) != 0 {
		t.Fatalf("expected 0 jobs, got %d", len(h.jobs.jobs))
	}
}

func TestDirectRescheduleKeepsOneJob(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	appt := h.createPending(t)

	if _, err := h.svc.Confirm(ctx, appt.ID, time.Date(2026, 3, 12, 10, 0, 0, 0, h.paris)); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if _, err := h.svc.Reschedule(ctx, appt.ID, time.Date(2026, 3, 13, 15, 30, 0, 0, h.paris)); err != nil {
		t.Fatalf("Reschedule failed: %v", err)
	}

	if len(h.jobs.jobs) != 1 {
		t.Fatalf("expected exactly 1 live job, got %d", len(h.jobs.jobs))
	}
	record := h.remRepo.records[appt.ID]
	want := time.Date(2026, 3, 12, 15, 30, 0, 0, h.paris)
	if !record.DueAt.Equal(want) {
		t.Fatalf("dueAt = %v, want %v", record.DueAt, want)
	}
}

func TestProposeRescheduleValidatesSlot(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	appt := h.createPending(t)

	if _, err := h.svc.Confirm(ctx, appt.ID, h.now.Add(48*time.Hour)); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}

	for _, bad := range []time.Time{
		time.Date(2026, 3, 13, 10, 15, 0, 0, h.paris),
		time.Date(2026, 3, 13, 7, 30, 0, 0, h.paris),
		time.Date(2026, 3, 13, 17, 30, 0, 0, h.paris),
	} {
		_, err := h.svc.ProposeReschedule(ctx, appt.ID, bad)
		var slotErr *rules.SlotLegalityError
		if !errors.As(err, &slotErr) {
			t.Errorf("%v: expected SlotLegalityError, got %v", bad, err)
		}
	}

	// Legal slot but not enough lead time.
	_, err := h.svc.ProposeReschedule(ctx, appt.ID, time.Date(2026, 3, 11, 10, 0, 0, 0, h.paris))
	var dateErr *rules.InvalidDateError
	if !errors.As(err, &dateErr) {
		t.Fatalf("expected InvalidDateError for short lead, got %v", err)
	}

	res, err := h.svc.ProposeReschedule(ctx, appt.ID, time.Date(2026, 3, 13, 17, 0, 0, 0, h.paris))
	if err != nil {
		t.Fatalf("legal proposal failed: %v", err)
	}
	if res.Appointment.Status != models.StatusRescheduled {
		t.Fatalf("status = %s", res.Appointment.Status)
	}
}

func TestUpdateStatusEnforcesStateMachine(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	appt := h.createPending(t)

	if _, err := h.svc.UpdateStatus(ctx, appt.ID, models.StatusCompleted); err == nil {
		t.Fatal("pending -> completed must be illegal")
	}

	// Confirm requires a schedule.
	_, err := h.svc.UpdateStatus(ctx, appt.ID, models.StatusConfirmed)
	var schedErr *MissingScheduleError
	if !errors.As(err, &schedErr) {
		t.Fatalf("expected MissingScheduleError, got %v", err)
	}

	res, err := h.svc.UpdateStatus(ctx, appt.ID, models.StatusRejected)
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if res.Appointment.Status != models.StatusRejected {
		t.Fatalf("status = %s", res.Appointment.Status)
	}

	if _, err := h.svc.UpdateStatus(ctx, appt.ID, models.StatusConfirmed); err == nil {
		t.Fatal("rejected is terminal")
	}
}

func TestDeleteRemovesReminder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	appt := h.createPending(t)

	if _, err := h.svc.Confirm(ctx, appt.ID, h.now.Add(48*time.Hour)); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if err := h.svc.Delete(ctx, appt.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if len(h.jobs.jobs) != 0 {
		t.Fatalf("expected 0 jobs after delete, got %d", len(h.jobs.jobs))
	}
	if got, _ := h.appts.GetByID(ctx, appt.ID); got != nil {
		t.Fatal("appointment should be gone")
	}
}

func TestNotificationFailureDoesNotRollBack(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	appt := h.createPending(t)
	h.notifier.failAll = true

	res, err := h.svc.Confirm(ctx, appt.ID, h.now.Add(48*time.Hour))
	if err != nil {
		t.Fatalf("Confirm must not fail on notification errors: %v", err)
	}
	if res.NotificationIssue == "" {
		t.Fatal("notification failure should surface in the result")
	}
	stored, _ := h.appts.GetByID(ctx, appt.ID)
	if stored.Status != models.StatusConfirmed {
		t.Fatal("transition must stand despite the notification failure")
	}
	if len(h.jobs.jobs) != 1 {
		t.Fatal("reminder must still be scheduled")
	}
}

func TestEndToEndLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	appt := h.createPending(t)

	scheduledAt := time.Date(2026, 3, 12, 10, 0, 0, 0, h.paris)
	if _, err := h.svc.Confirm(ctx, appt.ID, scheduledAt); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}

	record := h.remRepo.records[appt.ID]
	if record == nil || len(h.jobs.jobs) != 1 {
		t.Fatal("expected exactly one scheduled reminder")
	}
	if !record.DueAt.Equal(scheduledAt.Add(-24 * time.Hour)) {
		t.Fatalf("dueAt = %v, want scheduledAt-24h", record.DueAt)
	}

	if _, err := h.svc.CancelByToken(ctx, appt.ID, appt.CancellationToken); err != nil {
		t.Fatalf("CancelByToken failed: %v", err)
	}
	if len(h.jobs.jobs) != 0 || h.remRepo.records[appt.ID] != nil {
		t.Fatal("reminder must be gone after cancellation")
	}
	stored, _ := h.appts.GetByID(ctx, appt.ID)
	if stored.Status != models.StatusCancelled {
		t.Fatalf("status = %s, want cancelled", stored.Status)
	}
}

func TestStatsAndUpcoming(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	a1 := h.createPending(t)
	h.createPending(t) // second request from the same contact
	if _, err := h.svc.Confirm(ctx, a1.ID, h.now.Add(48*time.Hour)); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}

	counts, err := h.svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if counts[models.StatusConfirmed] != 1 || counts[models.StatusPending] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}

	upcoming, err := h.svc.Upcoming(ctx, 7)
	if err != nil {
		t.Fatalf("Upcoming failed: %v", err)
	}
	if len(upcoming) != 1 {
		t.Fatalf("expected 1 upcoming appointment, got %d", len(upcoming))
	}
}
