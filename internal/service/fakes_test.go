package service

import (
	"context"
	"sort"
	"time"

	"lukejohnson/rehab-app/internal/domain"
	"lukejohnson/rehab-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes. They mirror the mongo implementations'
// contracts closely enough for service-level tests: sentinel errors,
// ordering guarantees and the daily dedup included.

type fakeWorkoutPrefsRepo struct {
	prefs map[primitive.ObjectID]*domain.WorkoutPreferences
}

func newFakeWorkoutPrefsRepo() *fakeWorkoutPrefsRepo {
	return &fakeWorkoutPrefsRepo{prefs: make(map[primitive.ObjectID]*domain.WorkoutPreferences)}
}

func (f *fakeWorkoutPrefsRepo) GetOrCreate(_ context.Context, userID primitive.ObjectID) (*domain.WorkoutPreferences, error) {
	if p, ok := f.prefs[userID]; ok {
		copied := *p
		return &copied, nil
	}
	defaults := domain.DefaultWorkoutPreferences(userID)
	f.prefs[userID] = &defaults
	copied := defaults
	return &copied, nil
}

func (f *fakeWorkoutPrefsRepo) Update(_ context.Context, userID primitive.ObjectID, patch domain.WorkoutPreferencesPatch) (*domain.WorkoutPreferences, error) {
	p, ok := f.prefs[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.PreferredWorkoutDurationMinutes != nil {
		p.PreferredWorkoutDurationMinutes = *patch.PreferredWorkoutDurationMinutes
	}
	if patch.RecoveryDayRemindersEnabled != nil {
		p.RecoveryDayRemindersEnabled = *patch.RecoveryDayRemindersEnabled
	}
	if patch.PainFeedbackAfterWorkoutsEnabled != nil {
		p.PainFeedbackAfterWorkoutsEnabled = *patch.PainFeedbackAfterWorkoutsEnabled
	}
	if patch.AutoAdjustDifficultyEnabled != nil {
		p.AutoAdjustDifficultyEnabled = *patch.AutoAdjustDifficultyEnabled
	}
	if patch.ConservativeProgressionEnabled != nil {
		p.ConservativeProgressionEnabled = *patch.ConservativeProgressionEnabled
	}
	copied := *p
	return &copied, nil
}

type fakeNotifPrefsRepo struct {
	prefs map[primitive.ObjectID]*domain.NotificationPreferences
}

func newFakeNotifPrefsRepo() *fakeNotifPrefsRepo {
	return &fakeNotifPrefsRepo{prefs: make(map[primitive.ObjectID]*domain.NotificationPreferences)}
}

func (f *fakeNotifPrefsRepo) GetOrCreate(_ context.Context, userID primitive.ObjectID) (*domain.NotificationPreferences, error) {
	if p, ok := f.prefs[userID]; ok {
		copied := *p
		return &copied, nil
	}
	defaults := domain.DefaultNotificationPreferences(userID)
	f.prefs[userID] = &defaults
	copied := defaults
	return &copied, nil
}

func (f *fakeNotifPrefsRepo) Update(_ context.Context, userID primitive.ObjectID, patch domain.NotificationPreferencesPatch) (*domain.NotificationPreferences, error) {
	p, ok := f.prefs[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.WorkoutRemindersEnabled != nil {
		p.WorkoutRemindersEnabled = *patch.WorkoutRemindersEnabled
	}
	if patch.RestDayRemindersEnabled != nil {
		p.RestDayRemindersEnabled = *patch.RestDayRemindersEnabled
	}
	if patch.ProgressCheckInsEnabled != nil {
		p.ProgressCheckInsEnabled = *patch.ProgressCheckInsEnabled
	}
	if patch.RoutineRecommendationsEnabled != nil {
		p.RoutineRecommendationsEnabled = *patch.RoutineRecommendationsEnabled
	}
	if patch.PreferredReminderTime != nil {
		p.PreferredReminderTime = *patch.PreferredReminderTime
	}
	if patch.Timezone != nil {
		p.Timezone = *patch.Timezone
	}
	copied := *p
	return &copied, nil
}

type fakeSessionRepo struct {
	sessions map[primitive.ObjectID]*domain.WorkoutSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[primitive.ObjectID]*domain.WorkoutSession)}
}

func (f *fakeSessionRepo) Create(_ context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error) {
	session.ID = primitive.NewObjectID()
	session.StartedAt = time.Now().UTC()
	copied := *session
	f.sessions[session.ID] = &copied
	return session.ID, nil
}

func (f *fakeSessionRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSessionRepo) GetActiveByUserID(_ context.Context, userID primitive.ObjectID) (*domain.WorkoutSession, error) {
	for _, s := range f.sessions {
		if s.UserID == userID && s.Status == domain.SessionActive {
			copied := *s
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeSessionRepo) completedForUser(userID primitive.ObjectID) []domain.WorkoutSession {
	var completed []domain.WorkoutSession
	for _, s := range f.sessions {
		if s.UserID == userID && s.Status == domain.SessionCompleted && s.CompletedAt != nil {
			completed = append(completed, *s)
		}
	}
	sort.Slice(completed, func(i, j int) bool {
		return completed[i].CompletedAt.After(*completed[j].CompletedAt)
	})
	return completed
}

func (f *fakeSessionRepo) GetLastCompletedByUserID(_ context.Context, userID primitive.ObjectID) (*domain.WorkoutSession, error) {
	completed := f.completedForUser(userID)
	if len(completed) == 0 {
		return nil, repository.ErrNotFound
	}
	return &completed[0], nil
}

func (f *fakeSessionRepo) GetRecentCompletedByUserID(_ context.Context, userID primitive.ObjectID, limit int64) ([]domain.WorkoutSession, error) {
	completed := f.completedForUser(userID)
	if int64(len(completed)) > limit {
		completed = completed[:limit]
	}
	return completed, nil
}

func (f *fakeSessionRepo) Complete(_ context.Context, sessionID primitive.ObjectID, completion repository.SessionCompletion) error {
	s, ok := f.sessions[sessionID]
	if !ok || s.Status != domain.SessionActive {
		return repository.ErrNotFound
	}
	s.Status = domain.SessionCompleted
	ratio := completion.CompletionRatio
	after := completion.DifficultyAfter
	completedAt := completion.CompletedAt
	s.CompletionRatio = &ratio
	s.DifficultyAfter = &after
	s.AdjustmentReason = completion.AdjustmentReason
	s.ConservativeProgressionApplied = completion.ConservativeProgressionApplied
	s.CompletedAt = &completedAt
	return nil
}

func (f *fakeSessionRepo) HasCompletedOn(_ context.Context, userID primitive.ObjectID, day time.Time) (bool, error) {
	for _, s := range f.completedForUser(userID) {
		y1, m1, d1 := s.CompletedAt.Date()
		y2, m2, d2 := day.Date()
		if y1 == y2 && m1 == m2 && d1 == d2 {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSessionRepo) CompletedDays(_ context.Context, userID primitive.ObjectID) ([]time.Time, error) {
	seen := make(map[time.Time]bool)
	var days []time.Time
	for _, s := range f.completedForUser(userID) {
		y, m, d := s.CompletedAt.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, s.CompletedAt.Location())
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}
	return days, nil
}

func (f *fakeSessionRepo) CountCompletedSince(_ context.Context, userID primitive.ObjectID, since time.Time) (int, error) {
	count := 0
	for _, s := range f.completedForUser(userID) {
		if s.CompletedAt.After(since) {
			count++
		}
	}
	return count, nil
}

type fakeRoutineRepo struct {
	entries map[primitive.ObjectID][]domain.RoutineEntry
}

func newFakeRoutineRepo() *fakeRoutineRepo {
	return &fakeRoutineRepo{entries: make(map[primitive.ObjectID][]domain.RoutineEntry)}
}

func (f *fakeRoutineRepo) ReplaceForUser(_ context.Context, userID primitive.ObjectID, entries []domain.RoutineEntry) error {
	stored := make([]domain.RoutineEntry, len(entries))
	for i, e := range entries {
		e.ID = primitive.NewObjectID()
		e.UserID = userID
		stored[i] = e
	}
	f.entries[userID] = stored
	return nil
}

func (f *fakeRoutineRepo) ListByUserID(_ context.Context, userID primitive.ObjectID) ([]domain.RoutineEntry, error) {
	return append([]domain.RoutineEntry(nil), f.entries[userID]...), nil
}

func (f *fakeRoutineRepo) StatsByUserID(_ context.Context, userID primitive.ObjectID) (domain.RoutineStats, error) {
	stats := domain.RoutineStats{Total: len(f.entries[userID])}
	for _, e := range f.entries[userID] {
		if e.Goal {
			stats.Completed++
		}
	}
	return stats, nil
}

func (f *fakeRoutineRepo) MarkGoal(_ context.Context, userID, exerciseID primitive.ObjectID, goal bool) error {
	for i, e := range f.entries[userID] {
		if e.ExerciseID == exerciseID {
			f.entries[userID][i].Goal = goal
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeRoutineRepo) ResetGoals(_ context.Context, userID primitive.ObjectID) error {
	for i := range f.entries[userID] {
		f.entries[userID][i].Goal = false
	}
	return nil
}

func (f *fakeRoutineRepo) Remove(_ context.Context, userID, exerciseID primitive.ObjectID) error {
	entries := f.entries[userID]
	for i, e := range entries {
		if e.ExerciseID == exerciseID {
			f.entries[userID] = append(entries[:i], entries[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeRoutineRepo) RemoveAllByUserID(_ context.Context, userID primitive.ObjectID) error {
	delete(f.entries, userID)
	return nil
}

type fakePainRepo struct {
	bySession map[primitive.ObjectID]*domain.PainFeedback
	order     []primitive.ObjectID
}

func newFakePainRepo() *fakePainRepo {
	return &fakePainRepo{bySession: make(map[primitive.ObjectID]*domain.PainFeedback)}
}

func (f *fakePainRepo) Upsert(_ context.Context, feedback *domain.PainFeedback) error {
	if _, exists := f.bySession[feedback.WorkoutSessionID]; !exists {
		f.order = append(f.order, feedback.WorkoutSessionID)
	}
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now().UTC()
	}
	copied := *feedback
	f.bySession[feedback.WorkoutSessionID] = &copied
	return nil
}

func (f *fakePainRepo) GetBySessionID(_ context.Context, sessionID primitive.ObjectID) (*domain.PainFeedback, error) {
	fb, ok := f.bySession[sessionID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *fb
	return &copied, nil
}

func (f *fakePainRepo) GetLatestByUserID(_ context.Context, userID primitive.ObjectID) (*domain.PainFeedback, error) {
	for i := len(f.order) - 1; i >= 0; i-- {
		fb := f.bySession[f.order[i]]
		if fb.UserID == userID {
			copied := *fb
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeNotifLogRepo struct {
	entries []*domain.NotificationLogEntry
}

func newFakeNotifLogRepo() *fakeNotifLogRepo {
	return &fakeNotifLogRepo{}
}

func (f *fakeNotifLogRepo) find(userID primitive.ObjectID, nType domain.NotificationType, day string) *domain.NotificationLogEntry {
	for _, e := range f.entries {
		if e.UserID == userID && e.Type == nType && e.Day == day {
			return e
		}
	}
	return nil
}

func (f *fakeNotifLogRepo) CreateOncePerDay(_ context.Context, entry *domain.NotificationLogEntry) (bool, error) {
	if f.find(entry.UserID, entry.Type, entry.Day) != nil {
		return false, nil
	}
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = time.Now().UTC()
	copied := *entry
	f.entries = append(f.entries, &copied)
	return true, nil
}

func (f *fakeNotifLogRepo) HasTypeForDay(_ context.Context, userID primitive.ObjectID, nType domain.NotificationType, day string) (bool, error) {
	return f.find(userID, nType, day) != nil, nil
}

func (f *fakeNotifLogRepo) PendingForDay(_ context.Context, userID primitive.ObjectID, day string) ([]domain.NotificationLogEntry, error) {
	var pending []domain.NotificationLogEntry
	for _, e := range f.entries {
		if e.UserID == userID && e.Day == day && e.Status == domain.NotificationCreated {
			pending = append(pending, *e)
		}
	}
	return pending, nil
}

func (f *fakeNotifLogRepo) MarkShown(_ context.Context, ids []primitive.ObjectID, shownAt time.Time) error {
	for _, id := range ids {
		for _, e := range f.entries {
			if e.ID == id && e.Status == domain.NotificationCreated {
				e.Status = domain.NotificationShown
				at := shownAt
				e.ShownAt = &at
			}
		}
	}
	return nil
}

func (f *fakeNotifLogRepo) MarkClicked(_ context.Context, id, userID primitive.ObjectID, at time.Time) error {
	for _, e := range f.entries {
		if e.ID == id && e.UserID == userID {
			e.Status = domain.NotificationSent
			if e.ShownAt == nil {
				shown := at
				e.ShownAt = &shown
			}
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeNotifLogRepo) Create(_ context.Context, entry *domain.NotificationLogEntry) (primitive.ObjectID, error) {
	if f.find(entry.UserID, entry.Type, entry.Day) != nil {
		return primitive.NilObjectID, repository.ErrDuplicate
	}
	entry.ID = primitive.NewObjectID()
	copied := *entry
	f.entries = append(f.entries, &copied)
	return entry.ID, nil
}

type fakeCheckInRepo struct {
	checkIns []*domain.ProgressCheckIn
}

func newFakeCheckInRepo() *fakeCheckInRepo {
	return &fakeCheckInRepo{}
}

func (f *fakeCheckInRepo) Create(_ context.Context, checkIn *domain.ProgressCheckIn) (primitive.ObjectID, error) {
	checkIn.ID = primitive.NewObjectID()
	if checkIn.CreatedAt.IsZero() {
		checkIn.CreatedAt = time.Now().UTC()
	}
	copied := *checkIn
	f.checkIns = append(f.checkIns, &copied)
	return checkIn.ID, nil
}

func (f *fakeCheckInRepo) GetLastByUserID(_ context.Context, userID primitive.ObjectID) (*domain.ProgressCheckIn, error) {
	for i := len(f.checkIns) - 1; i >= 0; i-- {
		if f.checkIns[i].UserID == userID {
			copied := *f.checkIns[i]
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeUserRepo struct {
	users map[primitive.ObjectID]*domain.User
	ids   []primitive.ObjectID
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	for _, u := range f.users {
		if u.Username == user.Username || u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	copied := *user
	f.users[user.ID] = &copied
	f.ids = append(f.ids, user.ID)
	return user.ID, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) ListIDs(_ context.Context) ([]primitive.ObjectID, error) {
	return append([]primitive.ObjectID(nil), f.ids...), nil
}

func (f *fakeUserRepo) SetTOTPSecret(_ context.Context, userID primitive.ObjectID, secret string) error {
	u, ok := f.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.TOTPSecret = secret
	return nil
}

func (f *fakeUserRepo) EnableTOTP(_ context.Context, userID primitive.ObjectID) error {
	u, ok := f.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.TOTPEnabled = true
	return nil
}
