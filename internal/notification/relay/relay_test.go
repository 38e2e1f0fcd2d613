package relay

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"motorcover/internal/notification/mailer"
	"motorcover/internal/notification/models"
	"motorcover/internal/notification/store"
	id "motorcover/pkg/domain"
	"motorcover/pkg/requestcontext"
)

type staticResolver struct {
	emails map[id.UserID]string
}

func (r *staticResolver) EmailOf(_ context.Context, userID id.UserID) (string, error) {
	email, ok := r.emails[userID]
	if !ok {
		return "", fmt.Errorf("user %s has no address", userID)
	}
	return email, nil
}

type recordingPublisher struct {
	published []*models.Event
	fail      bool
}

func (p *recordingPublisher) Publish(_ context.Context, event *models.Event) error {
	if p.fail {
		return fmt.Errorf("broker unavailable")
	}
	p.published = append(p.published, event)
	return nil
}

type RelaySuite struct {
	suite.Suite
	outbox    *store.Memory
	mail      *mailer.Memory
	resolver  *staticResolver
	publisher *recordingPublisher
	relay     *Relay
	ctx       context.Context
	now       time.Time
	recipient id.UserID
}

func TestRelaySuite(t *testing.T) {
	suite.Run(t, new(RelaySuite))
}

func (s *RelaySuite) SetupTest() {
	s.outbox = store.NewMemory()
	s.mail = mailer.NewMemory()
	s.recipient = id.NewUserID()
	s.resolver = &staticResolver{emails: map[id.UserID]string{
		s.recipient: "priya@example.com",
	}}
	s.publisher = &recordingPublisher{}
	s.relay = New(s.outbox, s.mail, s.resolver, WithPublisher(s.publisher))
	s.now = time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *RelaySuite) enqueue(event *models.Event) *models.Event {
	s.Require().NoError(s.outbox.Create(s.ctx, event))
	return event
}

func (s *RelaySuite) TestDispatchDeliversAndMarksSent() {
	event := s.enqueue(models.PolicyIssued(s.recipient, id.NewPolicyID(), []byte("certificate text"), s.now))

	s.Require().NoError(s.relay.DispatchPending(s.ctx))

	sent := s.mail.Sent()
	s.Require().Len(sent, 1)
	s.Equal("priya@example.com", sent[0].To)
	s.Equal(event.Subject, sent[0].Subject)
	s.Equal([]byte("certificate text"), sent[0].Attachment)
	s.NotEmpty(sent[0].AttachmentName)

	stored, err := s.outbox.FindByID(s.ctx, event.ID)
	s.Require().NoError(err)
	s.Equal(models.EventStatusSent, stored.Status)
	s.Require().NotNil(stored.SentAt)
	s.Equal(s.now, *stored.SentAt)

	s.Require().Len(s.publisher.published, 1)
	s.Equal(event.ID, s.publisher.published[0].ID)
}

func (s *RelaySuite) TestDispatchSkipsSentEvents() {
	s.enqueue(models.ClaimApproved(s.recipient, id.NewClaimID(), 25000, s.now))

	s.Require().NoError(s.relay.DispatchPending(s.ctx))
	s.Require().NoError(s.relay.DispatchPending(s.ctx))

	s.Len(s.mail.Sent(), 1, "no duplicate delivery")
}

func (s *RelaySuite) TestMailFailureMarksFailedAndRetries() {
	event := s.enqueue(models.ProposalApproved(s.recipient, id.NewProposalID(), s.now))
	s.mail.FailWith(fmt.Errorf("relay timeout"))

	s.Require().NoError(s.relay.DispatchPending(s.ctx))

	stored, err := s.outbox.FindByID(s.ctx, event.ID)
	s.Require().NoError(err)
	s.Equal(models.EventStatusFailed, stored.Status)
	s.Equal(1, stored.Attempts)
	s.Contains(stored.LastError, "relay timeout")

	s.mail.FailWith(nil)
	s.Require().NoError(s.relay.DispatchPending(s.ctx))

	stored, err = s.outbox.FindByID(s.ctx, event.ID)
	s.Require().NoError(err)
	s.Equal(models.EventStatusSent, stored.Status)
	s.Len(s.mail.Sent(), 1)
}

func (s *RelaySuite) TestUnknownRecipientMarksFailed() {
	event := s.enqueue(models.ClaimRejected(id.NewUserID(), id.NewClaimID(), "duplicate claim", s.now))

	s.Require().NoError(s.relay.DispatchPending(s.ctx))

	stored, err := s.outbox.FindByID(s.ctx, event.ID)
	s.Require().NoError(err)
	s.Equal(models.EventStatusFailed, stored.Status)
	s.Empty(s.mail.Sent())
}

func (s *RelaySuite) TestPublisherFailureDoesNotBlockMail() {
	event := s.enqueue(models.ProposalRejected(s.recipient, id.NewProposalID(), "vehicle too old", s.now))
	s.publisher.fail = true

	s.Require().NoError(s.relay.DispatchPending(s.ctx))

	s.Len(s.mail.Sent(), 1)
	stored, err := s.outbox.FindByID(s.ctx, event.ID)
	s.Require().NoError(err)
	s.Equal(models.EventStatusSent, stored.Status)
}

func (s *RelaySuite) TestGivesUpAfterMaxAttempts() {
	event := s.enqueue(models.ProposalApproved(s.recipient, id.NewProposalID(), s.now))
	s.mail.FailWith(fmt.Errorf("hard bounce"))

	for range maxAttempts + 2 {
		s.Require().NoError(s.relay.DispatchPending(s.ctx))
	}

	stored, err := s.outbox.FindByID(s.ctx, event.ID)
	s.Require().NoError(err)
	s.Equal(maxAttempts, stored.Attempts, "retries stop at the cap")
}

func (s *RelaySuite) TestBatchSizeBoundsOnePass() {
	relay := New(s.outbox, s.mail, s.resolver, WithBatchSize(2))
	for range 5 {
		s.enqueue(models.ProposalApproved(s.recipient, id.NewProposalID(), s.now))
	}

	s.Require().NoError(relay.DispatchPending(s.ctx))
	s.Len(s.mail.Sent(), 2)

	s.Require().NoError(relay.DispatchPending(s.ctx))
	s.Require().NoError(relay.DispatchPending(s.ctx))
	s.Len(s.mail.Sent(), 5)
}
