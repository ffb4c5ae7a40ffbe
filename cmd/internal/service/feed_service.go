package service

import (
	"strconv"
	"strings"
	"wemakedo/cmd/internal/realtime"
	"wemakedo/cmd/internal/utils/apierror"
)

type DefaultFeedService struct {
	GatheringRepo     GatheringRepository
	ParticipationRepo ParticipationRepository
}

func NewFeedService(gatheringRepo GatheringRepository, participationRepo ParticipationRepository) *DefaultFeedService {
	return &DefaultFeedService{GatheringRepo: gatheringRepo, ParticipationRepo: participationRepo}
}

// AuthorizeTopic decides whether callerID may subscribe to topic.
//
//	gatherings                              anyone
//	{participations,comments,likes}:gathering_id=N  anyone, N must exist
//	applications:gathering_id=N             host of N
//	chat_messages:gathering_id=N            participants of N
//	notifications:user_id=U                 U only
//	reviews:reviewee_id=U                   U only
func (f *DefaultFeedService) AuthorizeTopic(topic, callerID string) apierror.ErrorResponse {
	if topic == realtime.GatheringsTopic {
		return nil
	}

	table, filter, ok := strings.Cut(topic, ":")
	if !ok {
		return apierror.NewInvalidParamTypeError("topic", "<table>:<column>=<value>")
	}
	column, value, ok := strings.Cut(filter, "=")
	if !ok || value == "" {
		return apierror.NewInvalidParamTypeError("topic", "<table>:<column>=<value>")
	}

	switch {
	case (table == realtime.TableNotifications && column == "user_id") ||
		(table == realtime.TableReviews && column == "reviewee_id"):
		if callerID == "" {
			return apierror.UnauthenticatedError
		}
		if value != callerID {
			return apierror.ForbiddenError
		}
		return nil

	case column == "gathering_id":
		gatheringID, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return apierror.NewInvalidParamTypeError("topic", "gathering id")
		}
		return f.authorizeGatheringTopic(table, gatheringID, callerID)
	}
	return apierror.NotFoundError
}

func (f *DefaultFeedService) authorizeGatheringTopic(table string, gatheringID int64, callerID string) apierror.ErrorResponse {
	switch table {
	case realtime.TableParticipations, realtime.TableComments, realtime.TableLikes:
		gathering, err := f.GatheringRepo.FindByID(gatheringID)
		if err != nil {
			return storeFailure(err, "failed to fetch gathering %d", gatheringID)
		}
		if gathering == nil {
			return apierror.NotFoundError
		}
		return nil

	case realtime.TableApplications:
		_, apierr := findHosted(f.GatheringRepo, gatheringID, callerID)
		return apierr

	case realtime.TableChatMessages:
		if callerID == "" {
			return apierror.UnauthenticatedError
		}
		joined, err := f.ParticipationRepo.Exists(gatheringID, callerID)
		if err != nil {
			return storeFailure(err, "failed to check participation of user %s in gathering %d", callerID, gatheringID)
		}
		if !joined {
			return apierror.NotParticipantError
		}
		return nil
	}
	return apierror.NotFoundError
}
