package vnpay

// Gateway response code for a successful transaction.
const ResponseSuccess = "00"

// IPN acknowledgement codes returned to the gateway.
const (
	RspConfirmSuccess   = "00"
	RspOrderNotFound    = "01"
	RspAlreadyConfirmed = "02"
	RspInvalidAmount    = "04"
	RspInvalidChecksum  = "97"
	RspUnknownError     = "99"
)

var responseMessages = map[string]string{
	"00": "Giao dịch thành công",
	"07": "Trừ tiền thành công. Giao dịch bị nghi ngờ (liên hệ VNPAY).",
	"09": "Thẻ/Tài khoản chưa đăng ký Internet Banking.",
	"10": "Thẻ/Tài khoản xác thực không thành công.",
	"11": "Giao dịch chờ xác nhận OTP.",
	"12": "Thẻ/Tài khoản hết hạn.",
	"13": "Nhập sai OTP quá số lần quy định.",
	"24": "Hủy giao dịch.",
	"51": "Tài khoản không đủ số dư.",
	"65": "Tài khoản bị khóa.",
	"75": "Ngân hàng bảo trì.",
	"79": "Khách hàng nhập sai mật khẩu thanh toán quá số lần quy định.",
	"99": "Lỗi không xác định.",
}

// MessageChecksumInvalid is shown to the buyer when a return redirect fails verification.
const MessageChecksumInvalid = "Checksum không hợp lệ"

// ResponseMessage returns the buyer-facing Vietnamese message for a gateway response code.
func ResponseMessage(code string) string {
	if msg, ok := responseMessages[code]; ok {
		return msg
	}
	return "Giao dịch thất bại"
}
