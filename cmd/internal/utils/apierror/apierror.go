package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse is what every service returns in place of a plain error.
// Routes render it as JSON with Code() as the HTTP status.
type ErrorResponse interface {
	error
	Code() int
	Kind() string
}

const (
	KindUnauthenticated           = "Unauthenticated"
	KindInvalidAuthToken          = "InvalidAuthToken"
	KindProfileMissing            = "ProfileMissing"
	KindNotFound                  = "NotFound"
	KindForbidden                 = "Forbidden"
	KindAlreadyJoined             = "AlreadyJoined"
	KindAlreadyApplied            = "AlreadyApplied"
	KindAlreadyReviewed           = "AlreadyReviewed"
	KindSelfReview                = "SelfReview"
	KindApprovalFailed            = "ApprovalFailed"
	KindGatheringFull             = "GatheringFull"
	KindNotRecruiting             = "NotRecruiting"
	KindNotParticipant            = "NotParticipant"
	KindCapacityBelowParticipants = "CapacityBelowParticipants"
	KindStoreUnavailable          = "StoreUnavailable"
	KindValidationFailed          = "ValidationFailed"
	KindMalformedBody             = "MalformedBody"
	KindInvalidParam              = "InvalidParam"
	KindIdentityProvider          = "IdentityProviderFailed"
	KindTooManyRequests           = "TooManyRequests"
)

type SimpleError struct {
	Status  int    `json:"-"`
	Type    string `json:"code"`
	Message string `json:"message"`
}

func (e *SimpleError) Error() string {
	return e.Message
}

func (e *SimpleError) Code() int {
	return e.Status
}

func (e *SimpleError) Kind() string {
	return e.Type
}

type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

type ValidationError struct {
	SimpleError
	Fields []FieldError `json:"fields"`
}

var (
	UnauthenticatedError  = newError(http.StatusUnauthorized, KindUnauthenticated, "You must be signed in")
	InvalidAuthTokenError = newError(http.StatusUnauthorized, KindInvalidAuthToken, "Authentication token is invalid or expired")
	ProfileMissingError   = newError(http.StatusForbidden, KindProfileMissing, "No profile exists for this account, sign in again")
	NotFoundError         = newError(http.StatusNotFound, KindNotFound, "Resource not found")
	ForbiddenError        = newError(http.StatusForbidden, KindForbidden, "Only the host can do this")

	AlreadyJoinedError   = newError(http.StatusConflict, KindAlreadyJoined, "Already joined this gathering")
	AlreadyAppliedError  = newError(http.StatusConflict, KindAlreadyApplied, "Already applied to this gathering")
	AlreadyReviewedError = newError(http.StatusConflict, KindAlreadyReviewed, "Already reviewed this user for this gathering")
	SelfReviewError      = newError(http.StatusBadRequest, KindSelfReview, "Cannot review yourself")

	GatheringFullError  = newError(http.StatusConflict, KindGatheringFull, "Gathering is full")
	NotRecruitingError  = newError(http.StatusConflict, KindNotRecruiting, "Gathering is not recruiting")
	NotParticipantError = newError(http.StatusForbidden, KindNotParticipant, "Only participants can do this")

	CapacityBelowParticipantsError = newError(http.StatusConflict, KindCapacityBelowParticipants, "Capacity cannot be lower than the current number of participants")
	MeetAtInPastError              = newError(http.StatusBadRequest, KindValidationFailed, "Meeting time must be in the future")

	InternalServerError  = newError(http.StatusInternalServerError, KindStoreUnavailable, "Something went wrong, please try again later")
	MalformedBodyError   = newError(http.StatusBadRequest, KindMalformedBody, "Request body is malformed")
	IDPFailedError       = newError(http.StatusBadGateway, KindIdentityProvider, "Identity provider request failed")
	IDPInvalidCodeError  = newError(http.StatusBadRequest, KindIdentityProvider, "Authorization code is invalid or expired")
	TooManyRequestsError = newError(http.StatusTooManyRequests, KindTooManyRequests, "Too many requests")
)

func newError(status int, kind, message string) *SimpleError {
	return &SimpleError{Status: status, Type: kind, Message: message}
}

func NewSimple(status int, message string) *SimpleError {
	return newError(status, http.StatusText(status), message)
}

func NewApprovalFailedError(reason string) *SimpleError {
	return newError(http.StatusConflict, KindApprovalFailed, "Failed to approve: "+reason)
}

func NewMissingParamError(param string) *SimpleError {
	return newError(http.StatusBadRequest, KindInvalidParam, fmt.Sprintf("Missing required parameter '%s'", param))
}

func NewInvalidParamTypeError(param, expected string) *SimpleError {
	return newError(http.StatusBadRequest, KindInvalidParam, fmt.Sprintf("Parameter '%s' must be of type %s", param, expected))
}

// FromValidationError converts validator output into a 400 listing every
// failed field by its JSON name.
func FromValidationError(err error) ErrorResponse {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return MalformedBodyError
	}

	fields := make([]FieldError, len(verrs))
	names := make([]string, len(verrs))
	for i, fe := range verrs {
		fields[i] = FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()}
		names[i] = fe.Field()
	}

	return &ValidationError{
		SimpleError: SimpleError{
			Status:  http.StatusBadRequest,
			Type:    KindValidationFailed,
			Message: "Invalid fields: " + strings.Join(names, ", "),
		},
		Fields: fields,
	}
}
