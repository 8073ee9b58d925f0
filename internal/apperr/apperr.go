package apperr

import (
	"encoding/json"
	"errors"
	"net/http"
)

var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrValidation    = errors.New("invalid input")
	ErrNotFound      = errors.New("resource not found")
	ErrQuotaExceeded = errors.New("quota exceeded")
	ErrRateLimited   = errors.New("rate limited")
	ErrInternal      = errors.New("internal error")
)

// Error pairs a sentinel with the message shown to the caller.
type Error struct {
	Err     error
	Message string
	Code    int
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(err error, message string) *Error {
	return &Error{Err: err, Message: message, Code: statusFor(err)}
}

func Wrap(err error, message string) *Error {
	return &Error{
		Err:     err,
		Message: message,
		Code:    http.StatusInternalServerError,
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrQuotaExceeded), errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Write renders err as {success:false,error}. Errors that are not *Error
// become a generic 500 so internal details never reach the caller.
func Write(w http.ResponseWriter, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = Wrap(err, MsgServerError)
	}
	WriteJSON(w, appErr.Code, errorBody{Success: false, Error: appErr.Message})
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// User-facing messages.
const (
	MsgAuthRequired    = "인증이 필요합니다."
	MsgInvalidToken    = "유효하지 않은 토큰입니다."
	MsgForbidden       = "접근 권한이 없습니다."
	MsgBadRequest      = "잘못된 요청 형식입니다."
	MsgEmptyReview     = "리뷰 내용을 입력해주세요."
	MsgUserNotFound    = "사용자를 찾을 수 없습니다."
	MsgRateLimited     = "요청이 너무 많습니다. 잠시 후 다시 시도해주세요."
	MsgServerError     = "서버 오류가 발생했습니다."
	MsgProfileRequired = "업종과 톤앤매너는 필수입니다."
	MsgNameTooLong     = "업체명은 100자 이내로 입력해주세요."
	MsgBadBusinessType = "유효하지 않은 업종입니다."
	MsgBadBrandTone    = "유효하지 않은 톤앤매너입니다."
	MsgProfileFailed   = "프로필 업데이트에 실패했습니다."
)
