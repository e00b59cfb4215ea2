package errmsg

import (
	"fmt"
	"strings"
)

// Code names a user-facing message.
type Code string

// Failure codes produced by the classifier.
const (
	CodeInvalidCredentials   Code = "invalid_credentials"
	CodeAccountNotFound      Code = "account_not_found"
	CodeAccountLocked        Code = "account_locked"
	CodeTooManyAttempts      Code = "too_many_attempts"
	CodeConnection           Code = "connection"
	CodeLoginFailed          Code = "login_failed"
	CodeEmailTaken           Code = "email_taken"
	CodeEmailInvalid         Code = "email_invalid"
	CodeWeakPassword         Code = "weak_password"
	CodePhoneInvalid         Code = "phone_invalid"
	CodeRegisterFailed       Code = "register_failed"
	CodeWrongCurrentPassword Code = "wrong_current_password"
	CodeChangePasswordFailed Code = "change_password_failed"
)

// Flash and page messages.
const (
	CodeLoginSuccess       Code = "login_success"
	CodeLogoutSuccess      Code = "logout_success"
	CodeRegisterSuccess    Code = "register_success"
	CodeRegisterLoginAgain Code = "register_login_again"
	CodeLoginRequired      Code = "login_required"
	CodeSessionExpired     Code = "session_expired"
	CodeProfileUpdated     Code = "profile_updated"
	CodeProfileFailed      Code = "profile_failed"
	CodePasswordChanged    Code = "password_changed"
	CodeSelectSeatsFirst   Code = "select_seats_first"
	CodeHoldExpired        Code = "hold_expired"
	CodeBookingNotFound    Code = "booking_not_found"
	CodePaymentNotFound    Code = "payment_not_found"
	CodeBookingCancelled   Code = "booking_cancelled"
	CodeCancelSuccess      Code = "cancel_success"
	CodeCancelFailed       Code = "cancel_failed"
	CodeTicketNotPaid      Code = "ticket_not_paid"
	CodeTicketNotFound     Code = "ticket_not_found"
	CodePaymentSuccess     Code = "payment_success"
	CodeMethodRequired     Code = "method_required"
	CodeNotificationsRead  Code = "notifications_read"
	CodeNotificationDone   Code = "notification_done"
	CodeRequestFailed      Code = "request_failed"
	CodeMovieNotFound      Code = "movie_not_found"
	CodeNotificationGone   Code = "notification_deleted"
)

var catalogs = map[string]map[Code]string{
	"vi": {
		CodeInvalidCredentials:   "Email hoặc mật khẩu không chính xác. Vui lòng kiểm tra lại.",
		CodeAccountNotFound:      "Tài khoản không tồn tại. Vui lòng kiểm tra email hoặc đăng ký tài khoản mới.",
		CodeAccountLocked:        "Tài khoản của bạn đã bị khóa. Vui lòng liên hệ hỗ trợ.",
		CodeTooManyAttempts:      "Bạn đã thử đăng nhập quá nhiều lần. Vui lòng thử lại sau ít phút.",
		CodeConnection:           "Lỗi kết nối máy chủ. Vui lòng thử lại sau.",
		CodeLoginFailed:          "Đăng nhập thất bại. Vui lòng kiểm tra lại thông tin đăng nhập.",
		CodeEmailTaken:           "Email này đã được đăng ký. Vui lòng sử dụng email khác hoặc đăng nhập.",
		CodeEmailInvalid:         "Địa chỉ email không hợp lệ. Vui lòng nhập email đúng định dạng.",
		CodeWeakPassword:         "Mật khẩu không đáp ứng yêu cầu. Vui lòng sử dụng mật khẩu mạnh hơn (ít nhất 6 ký tự).",
		CodePhoneInvalid:         "Số điện thoại không hợp lệ. Vui lòng kiểm tra lại.",
		CodeRegisterFailed:       "Đăng ký thất bại. Vui lòng kiểm tra lại thông tin và thử lại.",
		CodeWrongCurrentPassword: "Mật khẩu hiện tại không chính xác.",
		CodeChangePasswordFailed: "Đổi mật khẩu thất bại.",

		CodeLoginSuccess:       "Đăng nhập thành công!",
		CodeLogoutSuccess:      "Đăng xuất thành công!",
		CodeRegisterSuccess:    "Đăng ký thành công! Chào mừng bạn đến với CineBook!",
		CodeRegisterLoginAgain: "Đăng ký thành công! Vui lòng đăng nhập.",
		CodeLoginRequired:      "Vui lòng đăng nhập để tiếp tục.",
		CodeSessionExpired:     "Phiên đăng nhập đã hết hạn. Vui lòng đăng nhập lại.",
		CodeProfileUpdated:     "Cập nhật thông tin thành công!",
		CodeProfileFailed:      "Cập nhật thất bại. Vui lòng thử lại.",
		CodePasswordChanged:    "Đổi mật khẩu thành công!",
		CodeSelectSeatsFirst:   "Vui lòng chọn ghế trước",
		CodeHoldExpired:        "Phiên đặt vé đã hết hạn",
		CodeBookingNotFound:    "Không tìm thấy đơn đặt vé",
		CodePaymentNotFound:    "Không tìm thấy đơn đặt vé. Vui lòng đặt vé lại.",
		CodeBookingCancelled:   "Đơn đặt vé đã bị hủy",
		CodeCancelSuccess:      "Hủy vé thành công",
		CodeCancelFailed:       "Không thể hủy vé",
		CodeTicketNotPaid:      "Vé chưa được thanh toán",
		CodeTicketNotFound:     "Không tìm thấy vé",
		CodePaymentSuccess:     "Thanh toán thành công!",
		CodeMethodRequired:     "Vui lòng chọn phương thức thanh toán",
		CodeNotificationsRead:  "Đã đánh dấu tất cả là đã đọc",
		CodeNotificationDone:   "Đã cập nhật thông báo",
		CodeRequestFailed:      "Có lỗi xảy ra. Vui lòng thử lại.",
		CodeMovieNotFound:      "Không tìm thấy phim",
		CodeNotificationGone:   "Đã xóa thông báo",
	},
	"en": {
		CodeInvalidCredentials:   "Incorrect email or password. Please check and try again.",
		CodeAccountNotFound:      "No account exists for this email. Check the address or sign up.",
		CodeAccountLocked:        "Your account has been locked. Please contact support.",
		CodeTooManyAttempts:      "Too many login attempts. Please try again in a few minutes.",
		CodeConnection:           "Could not reach the server. Please try again later.",
		CodeLoginFailed:          "Login failed. Please check your credentials.",
		CodeEmailTaken:           "This email is already registered. Use another email or log in.",
		CodeEmailInvalid:         "The email address is not valid.",
		CodeWeakPassword:         "The password does not meet the requirements (at least 6 characters).",
		CodePhoneInvalid:         "The phone number is not valid.",
		CodeRegisterFailed:       "Registration failed. Please check your details and try again.",
		CodeWrongCurrentPassword: "The current password is incorrect.",
		CodeChangePasswordFailed: "Could not change the password.",

		CodeLoginSuccess:       "Logged in successfully!",
		CodeLogoutSuccess:      "Logged out successfully!",
		CodeRegisterSuccess:    "Registration complete. Welcome to CineBook!",
		CodeRegisterLoginAgain: "Registration complete. Please log in.",
		CodeLoginRequired:      "Please log in to continue.",
		CodeSessionExpired:     "Your session has expired. Please log in again.",
		CodeProfileUpdated:     "Profile updated!",
		CodeProfileFailed:      "Update failed. Please try again.",
		CodePasswordChanged:    "Password changed!",
		CodeSelectSeatsFirst:   "Please select your seats first",
		CodeHoldExpired:        "Your booking session has expired",
		CodeBookingNotFound:    "Booking not found",
		CodePaymentNotFound:    "Booking not found. Please book again.",
		CodeBookingCancelled:   "This booking has been cancelled",
		CodeCancelSuccess:      "Booking cancelled",
		CodeCancelFailed:       "Could not cancel the booking",
		CodeTicketNotPaid:      "This ticket has not been paid yet",
		CodeTicketNotFound:     "Ticket not found",
		CodePaymentSuccess:     "Payment successful!",
		CodeMethodRequired:     "Please choose a payment method",
		CodeNotificationsRead:  "All notifications marked as read",
		CodeNotificationDone:   "Notification updated",
		CodeRequestFailed:      "Something went wrong. Please try again.",
		CodeMovieNotFound:      "Movie not found",
		CodeNotificationGone:   "Notification deleted",
	},
}

// Form validation messages by rule; %s is the rule parameter.
var fieldRules = map[string]map[string]string{
	"vi": {
		"required": "Trường này là bắt buộc.",
		"email":    "Email không hợp lệ.",
		"min":      "Phải có ít nhất %s ký tự.",
		"max":      "Không được vượt quá %s ký tự.",
		"eqfield":  "Xác nhận không khớp.",
		"":         "Giá trị không hợp lệ.",
	},
	"en": {
		"required": "This field is required.",
		"email":    "The email address is not valid.",
		"min":      "Must be at least %s characters.",
		"max":      "Must not exceed %s characters.",
		"eqfield":  "The confirmation does not match.",
		"":         "The value is not valid.",
	},
}

// Catalog renders codes in one locale.
type Catalog struct {
	messages map[Code]string
	fields   map[string]string
}

// New returns the catalog for locale, defaulting to Vietnamese.
func New(locale string) *Catalog {
	if _, ok := catalogs[locale]; !ok {
		locale = "vi"
	}
	return &Catalog{messages: catalogs[locale], fields: fieldRules[locale]}
}

// Field returns the message for a failed validation rule.
func (c *Catalog) Field(rule, param string) string {
	tmpl, ok := c.fields[rule]
	if !ok {
		return c.fields[""]
	}
	if strings.Contains(tmpl, "%s") {
		return fmt.Sprintf(tmpl, param)
	}
	return tmpl
}

// Text returns the message for code, or the code itself when unknown.
func (c *Catalog) Text(code Code) string {
	if s, ok := c.messages[code]; ok {
		return s
	}
	return string(code)
}
