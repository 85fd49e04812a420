package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/lexflow/legal-case-api/databases"
	"github.com/lexflow/legal-case-api/models"
	templates "github.com/lexflow/legal-case-api/templates/html"
)

// Scheduler handles periodic background jobs: hearing reminders and
// room availability reconciliation
type Scheduler struct {
	cron       *cron.Cron
	HDB        databases.HearingDatabase
	CDB        databases.CaseDatabase
	RDB        databases.RoomDatabase
	UDB        databases.UserDatabase
	LockDB     databases.SchedulerLockDatabase
	instanceID string
}

// NewScheduler creates a new scheduler instance
func NewScheduler(
	hDB databases.HearingDatabase,
	cDB databases.CaseDatabase,
	rDB databases.RoomDatabase,
	uDB databases.UserDatabase,
	lockDB databases.SchedulerLockDatabase,
) *Scheduler {
	// Generate a unique instance ID for this pod
	instanceID := os.Getenv("DYNO") // Heroku sets this to "web.1", "web.2", etc.
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%d", time.Now().UnixNano())
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		HDB:        hDB,
		CDB:        cDB,
		RDB:        rDB,
		UDB:        uDB,
		LockDB:     lockDB,
		instanceID: instanceID,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Send hearing reminders daily at 7 AM UTC for the next day's hearings
	_, err := s.cron.AddFunc("0 7 * * *", s.sendHearingReminders)
	if err != nil {
		zap.S().Errorw("failed to register hearing reminder job", "error", err)
	}

	// Reconcile room availability flags hourly against the hearing
	// collection, which stays the source of truth
	_, err = s.cron.AddFunc("0 * * * *", s.reconcileRoomAvailability)
	if err != nil {
		zap.S().Errorw("failed to register room reconciliation job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("Hearing scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Hearing scheduler stopped")
}

// sendHearingReminders emails the parties of every hearing scheduled
// for tomorrow that is still open or approved
func (s *Scheduler) sendHearingReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	acquired, err := s.LockDB.TryAcquireLock(ctx, "hearing_reminder_job", s.instanceID, 10*time.Minute)
	if err != nil {
		zap.S().Errorw("failed to acquire lock for hearing reminder job", "error", err)
		return
	}
	if !acquired {
		zap.S().Debug("Hearing reminder job already running on another instance, skipping")
		return
	}
	defer s.LockDB.ReleaseLock(ctx, "hearing_reminder_job", s.instanceID)

	tomorrow := time.Now().UTC().Add(24 * time.Hour).Format("2006-01-02")

	zap.S().Infow("Running hearing reminder job", "instance", s.instanceID, "date", tomorrow)

	hearings, err := s.HDB.Find(ctx, bson.M{
		"hearing.date":   tomorrow,
		"hearing.status": bson.M{"$in": []string{models.HearingStateOpen, models.HearingStateApproved}},
	})
	if err != nil {
		zap.S().Errorw("failed to find tomorrow's hearings", "error", err)
		return
	}

	sent := 0
	for _, hearing := range hearings {
		if s.remindHearingParties(ctx, hearing) {
			sent++
		}
	}

	zap.S().Infow("Hearing reminder job complete",
		"hearingsFound", len(hearings),
		"remindersSent", sent,
	)
}

func (s *Scheduler) remindHearingParties(ctx context.Context, hearing models.Hearing) bool {
	caseID, err := primitive.ObjectIDFromHex(hearing.Details.CaseID)
	if err != nil {
		zap.S().Errorw("bad caseID on hearing", "hearingId", hearing.ID.Hex(), "error", err)
		return false
	}
	courtCase, err := s.CDB.FindOne(ctx, bson.M{"_id": caseID})
	if err != nil {
		zap.S().Errorw("failed to find case for reminder", "hearingId", hearing.ID.Hex(), "error", err)
		return false
	}

	roomNumber := hearing.Details.RoomID
	if roomID, err := primitive.ObjectIDFromHex(hearing.Details.RoomID); err == nil {
		if room, err := s.RDB.FindOne(ctx, bson.M{"_id": roomID}); err == nil {
			roomNumber = room.Details.Number
		}
	}

	sent := false
	for _, userID := range []string{courtCase.Details.ClientID, courtCase.Details.LawyerID} {
		email, name := s.getUserEmail(ctx, userID)
		if email == "" {
			continue
		}

		subject := fmt.Sprintf("Hearing Reminder: Case %s Tomorrow", courtCase.Details.Number)
		htmlContent := templates.RenderHearingReminderEmail(name, courtCase.Details.Number,
			hearing.Details.Type, roomNumber, hearing.Details.Date, hearing.Details.Time)
		plainText := fmt.Sprintf("Reminder: a %s hearing for case %s is scheduled tomorrow (%s) at %s in room %s.",
			hearing.Details.Type, courtCase.Details.Number, hearing.Details.Date, hearing.Details.Time, roomNumber)

		if err := s.sendEmail(email, name, subject, htmlContent, plainText); err != nil {
			zap.S().Errorw("failed to send hearing reminder email",
				"hearingId", hearing.ID.Hex(), "userId", userID, "error", err)
			continue
		}
		sent = true
	}
	return sent
}

// reconcileRoomAvailability recomputes each room's availability flag
// from the hearing collection: a room with a non-terminal hearing today
// shows as unavailable, everything else as available. Maintenance rooms
// always show unavailable.
func (s *Scheduler) reconcileRoomAvailability() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	acquired, err := s.LockDB.TryAcquireLock(ctx, "room_reconcile_job", s.instanceID, 10*time.Minute)
	if err != nil {
		zap.S().Errorw("failed to acquire lock for room reconciliation job", "error", err)
		return
	}
	if !acquired {
		zap.S().Debug("Room reconciliation job already running on another instance, skipping")
		return
	}
	defer s.LockDB.ReleaseLock(ctx, "room_reconcile_job", s.instanceID)

	today := time.Now().UTC().Format("2006-01-02")

	rooms, err := s.RDB.Find(ctx, bson.M{})
	if err != nil {
		zap.S().Errorw("failed to list rooms for reconciliation", "error", err)
		return
	}

	flipped := 0
	for _, room := range rooms {
		available := room.Details.Status == models.RoomStatusActive
		if available {
			occupied, err := s.HDB.CountDocuments(ctx, bson.M{
				"hearing.roomID": room.ID.Hex(),
				"hearing.date":   today,
				"hearing.status": bson.M{"$nin": models.HearingTerminalStates},
			})
			if err != nil {
				zap.S().Errorw("failed to count hearings for room",
					"roomId", room.ID.Hex(), "error", err)
				continue
			}
			available = occupied == 0
		}

		if available == room.Details.Available {
			continue
		}
		if err := s.RDB.SetAvailability(ctx, room.ID.Hex(), available); err != nil {
			zap.S().Errorw("failed to update room availability",
				"roomId", room.ID.Hex(), "error", err)
			continue
		}
		flipped++
	}

	zap.S().Infow("Room reconciliation complete",
		"roomsChecked", len(rooms),
		"flagsFlipped", flipped,
	)
}

// --- Email Helper Functions ---

func (s *Scheduler) sendEmail(toEmail, toName, subject, htmlContent, plainText string) error {
	from := mail.NewEmail("LexFlow Legal", "no-reply@lexflow-legal.com")
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)
	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	response, err := client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body)
	}
	return nil
}

func (s *Scheduler) getUserEmail(ctx context.Context, userID string) (email, name string) {
	if userID == "" {
		return "", ""
	}
	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return "", ""
	}
	user, err := s.UDB.FindOne(ctx, bson.M{"_id": uID})
	if err != nil || user.Details.Email == "" {
		return "", ""
	}
	return user.Details.Email, user.Details.FirstName + " " + user.Details.LastName
}
