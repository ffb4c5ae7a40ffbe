package service

import (
	"errors"
	"fmt"
	"wemakedo/cmd/internal/config"
	"wemakedo/cmd/internal/domain/database/repository"
	"wemakedo/cmd/internal/domain/entity"
	"wemakedo/cmd/internal/metrics"
	"wemakedo/cmd/internal/realtime"
	"wemakedo/cmd/internal/utils"
	"wemakedo/cmd/internal/utils/apierror"

	"github.com/labstack/gommon/log"
)

type ApplicationRepository interface {
	Create(application *entity.Application) error
	Find(gatheringID int64, userID string) (*entity.Application, error)
	FindByGathering(gatheringID int64) ([]*entity.Application, error)
	Delete(gatheringID int64, userID string) (int64, error)
	Approve(application *entity.Application, participation *entity.Participation) error
}

type DefaultParticipationService struct {
	GatheringRepo     GatheringRepository
	ParticipationRepo ParticipationRepository
	ApplicationRepo   ApplicationRepository
	Notifier          *Notifier
	Feed              realtime.Publisher
	Policy            config.JoinPolicy
}

func NewParticipationService(
	gatheringRepo GatheringRepository,
	participationRepo ParticipationRepository,
	applicationRepo ApplicationRepository,
	notifier *Notifier,
	feed realtime.Publisher,
	policy config.JoinPolicy,
) *DefaultParticipationService {
	return &DefaultParticipationService{
		GatheringRepo:     gatheringRepo,
		ParticipationRepo: participationRepo,
		ApplicationRepo:   applicationRepo,
		Notifier:          notifier,
		Feed:              feed,
		Policy:            policy,
	}
}

// JoinOrApply lets the host join their own gathering and, for guests, either
// joins directly or files an application depending on the join policy.
func (p *DefaultParticipationService) JoinOrApply(gatheringID int64, callerID string) (*JoinResponse, apierror.ErrorResponse) {
	if callerID == "" {
		return nil, apierror.UnauthenticatedError
	}

	gathering, err := p.GatheringRepo.FindByID(gatheringID)
	if err != nil {
		return nil, storeFailure(err, "failed to fetch gathering %d", gatheringID)
	}
	if gathering == nil {
		return nil, apierror.NotFoundError
	}

	if gathering.HostID == callerID {
		if apierr := p.join(gathering, callerID, "host_joined"); apierr != nil {
			return nil, apierr
		}
		return &JoinResponse{GatheringID: gatheringID, State: StateJoined}, nil
	}

	if gathering.Status != entity.GatheringRecruiting {
		metrics.Rejection("join", "not_recruiting")
		return nil, apierror.NotRecruitingError
	}

	if p.Policy == config.JoinPolicyDirect {
		if apierr := p.join(gathering, callerID, "guest_joined"); apierr != nil {
			return nil, apierr
		}
		p.Notifier.Notify(gathering.HostID, callerID, entity.NotifyParticipantJoined, gatheringID,
			"New participant", fmt.Sprintf("Someone joined \"%s\"", gathering.Title))
		return &JoinResponse{GatheringID: gatheringID, State: StateJoined}, nil
	}

	application := &entity.Application{
		GatheringID: gatheringID,
		UserID:      callerID,
		CreatedAt:   utils.NowUTC(),
	}
	err = p.ApplicationRepo.Create(application)
	switch {
	case err == nil:
	case isDuplicate(err):
		metrics.Rejection("apply", "already_applied")
		return nil, apierror.AlreadyAppliedError
	case errors.Is(err, repository.ErrAlreadyParticipant):
		metrics.Rejection("apply", "already_joined")
		return nil, apierror.AlreadyJoinedError
	default:
		return nil, storeFailure(err, "failed to file application of user %s to gathering %d", callerID, gatheringID)
	}
	metrics.Transition("applied")

	publish(p.Feed, realtime.NewEvent(
		realtime.Topic(realtime.TableApplications, "gathering_id", gatheringID),
		realtime.TableApplications, realtime.ActionInsert, "application_received",
		&ApplicationWithUser{GatheringID: gatheringID, User: &UserSummary{ID: callerID}, CreatedAt: utils.FormatEpoch(application.CreatedAt)},
	))
	p.Notifier.Notify(gathering.HostID, callerID, entity.NotifyApplicationReceived, gatheringID,
		"New application", fmt.Sprintf("Someone applied to \"%s\"", gathering.Title))

	return &JoinResponse{GatheringID: gatheringID, State: StateApplied}, nil
}

// CancelApplication withdraws the caller's pending application. Withdrawing
// an application that does not exist is not an error.
func (p *DefaultParticipationService) CancelApplication(gatheringID int64, callerID string) apierror.ErrorResponse {
	if callerID == "" {
		return apierror.UnauthenticatedError
	}

	rows, err := p.ApplicationRepo.Delete(gatheringID, callerID)
	if err != nil {
		return storeFailure(err, "failed to cancel application of user %s to gathering %d", callerID, gatheringID)
	}
	if rows > 0 {
		metrics.Transition("application_canceled")
		p.publishApplicationRemoved(gatheringID, callerID, "application_canceled")
	}
	return nil
}

func (p *DefaultParticipationService) ApproveApplication(gatheringID int64, applicantID, callerID string) apierror.ErrorResponse {
	gathering, apierr := findHosted(p.GatheringRepo, gatheringID, callerID)
	if apierr != nil {
		return apierr
	}

	application, err := p.ApplicationRepo.Find(gatheringID, applicantID)
	if err != nil {
		return storeFailure(err, "failed to fetch application of user %s to gathering %d", applicantID, gatheringID)
	}
	if application == nil {
		return apierror.NotFoundError
	}

	participation := &entity.Participation{
		GatheringID: gatheringID,
		UserID:      applicantID,
		Status:      entity.ParticipationJoined,
		CreatedAt:   utils.NowUTC(),
	}
	err = p.ApplicationRepo.Approve(application, participation)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrGatheringFull):
		metrics.Rejection("approve", "full")
		return apierror.NewApprovalFailedError("gathering is full")
	case isDuplicate(err):
		metrics.Rejection("approve", "already_joined")
		return apierror.NewApprovalFailedError("user already participates")
	default:
		log.Errorf("failed to approve application of user %s to gathering %d: %v", applicantID, gatheringID, err)
		metrics.Rejection("approve", "store")
		return apierror.NewApprovalFailedError("participation could not be stored")
	}
	metrics.Transition("approved")

	p.publishApplicationRemoved(gatheringID, applicantID, "application_approved")
	p.publishJoined(participation)
	p.Notifier.Notify(applicantID, gathering.HostID, entity.NotifyApplicationApproved, gatheringID,
		"Application approved", fmt.Sprintf("You are in! \"%s\" accepted your application", gathering.Title))
	return nil
}

// RejectApplication deletes the application outright; nothing records the
// rejection besides the notification sent to the applicant.
func (p *DefaultParticipationService) RejectApplication(gatheringID int64, applicantID, callerID string) apierror.ErrorResponse {
	gathering, apierr := findHosted(p.GatheringRepo, gatheringID, callerID)
	if apierr != nil {
		return apierr
	}

	rows, err := p.ApplicationRepo.Delete(gatheringID, applicantID)
	if err != nil {
		return storeFailure(err, "failed to reject application of user %s to gathering %d", applicantID, gatheringID)
	}
	if rows == 0 {
		return apierror.NotFoundError
	}
	metrics.Transition("rejected")

	p.publishApplicationRemoved(gatheringID, applicantID, "application_rejected")
	p.Notifier.Notify(applicantID, gathering.HostID, entity.NotifyApplicationRejected, gatheringID,
		"Application declined", fmt.Sprintf("Your application to \"%s\" was declined", gathering.Title))
	return nil
}

func (p *DefaultParticipationService) ListApplications(gatheringID int64, callerID string) ([]*ApplicationWithUser, apierror.ErrorResponse) {
	if _, apierr := findHosted(p.GatheringRepo, gatheringID, callerID); apierr != nil {
		return nil, apierr
	}

	applications, err := p.ApplicationRepo.FindByGathering(gatheringID)
	if err != nil {
		return nil, storeFailure(err, "failed to list applications of gathering %d", gatheringID)
	}

	resp := make([]*ApplicationWithUser, len(applications))
	for i, app := range applications {
		resp[i] = &ApplicationWithUser{
			GatheringID: app.GatheringID,
			User:        toUserSummary(&app.User),
			CreatedAt:   utils.FormatEpoch(app.CreatedAt),
		}
	}
	return resp, nil
}

func (p *DefaultParticipationService) join(gathering *entity.Gathering, userID, transition string) apierror.ErrorResponse {
	participation := &entity.Participation{
		GatheringID: gathering.ID,
		UserID:      userID,
		Status:      entity.ParticipationJoined,
		CreatedAt:   utils.NowUTC(),
	}

	withdrawn, err := p.ParticipationRepo.CreateGuarded(participation)
	switch {
	case err == nil:
	case isDuplicate(err):
		metrics.Rejection("join", "already_joined")
		return apierror.AlreadyJoinedError
	case errors.Is(err, repository.ErrGatheringFull):
		metrics.Rejection("join", "full")
		return apierror.GatheringFullError
	default:
		return storeFailure(err, "failed to add user %s to gathering %d", userID, gathering.ID)
	}
	metrics.Transition(transition)

	if withdrawn {
		p.publishApplicationRemoved(gathering.ID, userID, "application_superseded")
	}
	p.publishJoined(participation)
	return nil
}

func (p *DefaultParticipationService) publishJoined(participation *entity.Participation) {
	record := struct {
		GatheringID int64  `json:"gathering_id"`
		UserID      string `json:"user_id"`
		Status      string `json:"status"`
		CreatedAt   string `json:"created_at"`
	}{participation.GatheringID, participation.UserID, string(participation.Status), utils.FormatEpoch(participation.CreatedAt)}

	publish(p.Feed, realtime.NewEvent(
		realtime.Topic(realtime.TableParticipations, "gathering_id", participation.GatheringID),
		realtime.TableParticipations, realtime.ActionInsert, "participant_joined", record,
	))
}

func (p *DefaultParticipationService) publishApplicationRemoved(gatheringID int64, userID, typ string) {
	record := struct {
		GatheringID int64  `json:"gathering_id"`
		UserID      string `json:"user_id"`
	}{gatheringID, userID}

	publish(p.Feed, realtime.NewEvent(
		realtime.Topic(realtime.TableApplications, "gathering_id", gatheringID),
		realtime.TableApplications, realtime.ActionDelete, typ, record,
	))
}
