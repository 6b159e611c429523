package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
)

// ErrorKind определяет вид сетевой ошибки. Набор закрыт.
type ErrorKind int

const (
	KindNone ErrorKind = iota // Не ошибка клиента API
	KindInvalidURL
	KindNoData
	KindDecoding
	KindEncoding
	KindServer
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindTimeout
	KindNoInternet
	KindUnknown
)

var kindNames = map[ErrorKind]string{
	KindNone:         "none",
	KindInvalidURL:   "invalid_url",
	KindNoData:       "no_data",
	KindDecoding:     "decoding_error",
	KindEncoding:     "encoding_error",
	KindServer:       "server_error",
	KindUnauthorized: "unauthorized",
	KindForbidden:    "forbidden",
	KindNotFound:     "not_found",
	KindTimeout:      "timeout",
	KindNoInternet:   "no_internet_connection",
	KindUnknown:      "unknown",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error возвращается клиентом API при любом сбое.
type Error struct {
	Kind       ErrorKind
	StatusCode int // Для KindServer и KindUnknown по статусу

	// Метаданные тела ошибки сервера, если его удалось разобрать.
	ServerMessage string
	ServerCode    string
	Details       map[string]string

	Err error // Причина, только для диагностики
}

// Сигнальные значения для errors.Is. Сравнение идет по виду ошибки.
var (
	ErrInvalidURL   = &Error{Kind: KindInvalidURL}
	ErrNoData       = &Error{Kind: KindNoData}
	ErrDecoding     = &Error{Kind: KindDecoding}
	ErrEncoding     = &Error{Kind: KindEncoding}
	ErrServer       = &Error{Kind: KindServer}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrForbidden    = &Error{Kind: KindForbidden}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrTimeout      = &Error{Kind: KindTimeout}
	ErrNoInternet   = &Error{Kind: KindNoInternet}
	ErrUnknown      = &Error{Kind: KindUnknown}
)

func newError(kind ErrorKind, cause error) *Error {
	return &Error{Kind: kind, Err: cause}
}

// Error возвращает сообщение для пользователя.
func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidURL:
		return "Geçersiz URL"
	case KindNoData:
		return "Sunucudan veri alınamadı"
	case KindDecoding:
		return "Veri işlenirken hata oluştu"
	case KindEncoding:
		return "Veri gönderilirken hata oluştu"
	case KindServer:
		return fmt.Sprintf("Sunucu hatası: %d", e.StatusCode)
	case KindUnauthorized:
		return "Oturum süreniz dolmuş. Lütfen tekrar giriş yapın"
	case KindForbidden:
		return "Bu işlem için yetkiniz yok"
	case KindNotFound:
		return "İstenen kaynak bulunamadı"
	case KindTimeout:
		return "İstek zaman aşımına uğradı"
	case KindNoInternet:
		return "İnternet bağlantısı yok. Lütfen bağlantınızı kontrol edin"
	default:
		if e.Err != nil {
			return "Beklenmeyen bir hata oluştu: " + e.Err.Error()
		}
		return "Beklenmeyen bir hata oluştu"
	}
}

// Suggestion возвращает подсказку пользователю, что делать дальше. Пустая, если подсказки нет.
func (e *Error) Suggestion() string {
	switch e.Kind {
	case KindUnauthorized:
		return "Lütfen tekrar giriş yapın"
	case KindNoInternet:
		return "İnternet bağlantınızı kontrol edin ve tekrar deneyin"
	case KindTimeout:
		return "Lütfen tekrar deneyin"
	case KindServer:
		return "Lütfen daha sonra tekrar deneyin"
	default:
		return ""
	}
}

// Unwrap возвращает причину.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is сравнивает по виду; код статуса учитывается, только если он задан в target.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.StatusCode == 0 || t.StatusCode == e.StatusCode
}

// KindOf возвращает вид ошибки API или KindNone, если err не из этого пакета.
func KindOf(err error) ErrorKind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindNone
}

// StatusError создает ошибку, соответствующую HTTP-статусу, либо nil для 2xx.
func StatusError(code int) *Error {
	switch {
	case code >= 200 && code <= 299:
		return nil
	case code == 401:
		return &Error{Kind: KindUnauthorized, StatusCode: code}
	case code == 403:
		return &Error{Kind: KindForbidden, StatusCode: code}
	case code == 404:
		return &Error{Kind: KindNotFound, StatusCode: code}
	case code >= 400 && code <= 599:
		return &Error{Kind: KindServer, StatusCode: code}
	default:
		return &Error{Kind: KindUnknown, StatusCode: code, Err: fmt.Errorf("неожиданный статус ответа %d", code)}
	}
}

// transportError приводит ошибку выполнения запроса к виду из таксономии.
func transportError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(KindTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newError(KindTimeout, err)
	}
	if isConnectivityError(err) {
		return newError(KindNoInternet, err)
	}
	return newError(KindUnknown, err)
}

var connectivityErrnos = []syscall.Errno{
	syscall.ECONNREFUSED,
	syscall.ECONNRESET,
	syscall.ECONNABORTED,
	syscall.ENETUNREACH,
	syscall.ENETDOWN,
	syscall.EHOSTUNREACH,
	syscall.EPIPE,
}

// isConnectivityError проверяет, что соединения нет или оно было потеряно.
func isConnectivityError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	for _, errno := range connectivityErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
