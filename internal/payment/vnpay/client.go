package vnpay

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/ecom-api/internal/pricing"
)

const (
	Version        = "2.1.0"
	CommandPay     = "pay"
	CurrencyVND    = "VND"
	OrderTypeOther = "other"
	// AmountScale converts an amount to the gateway's minor unit.
	AmountScale = 100

	dateLayout = "20060102150405"

	defaultPayURL = "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"
)

// Config carries the merchant settings.
type Config struct {
	TmnCode     string
	HashSecret  string
	PayURL      string
	ReturnURL   string
	Timezone    string
	ExpireAfter time.Duration
}

// PaymentRequest describes one payment attempt for an order.
type PaymentRequest struct {
	OrderID  int64
	Amount   decimal.Decimal
	Locale   string
	BankCode string
	ClientIP string
}

// PaymentURL is a signed redirect to the gateway.
type PaymentURL struct {
	URL       string
	TxnRef    string
	CreatedAt time.Time
}

// Client signs outbound payment requests and verifies callbacks with one secret.
type Client struct {
	cfg Config
	loc *time.Location
	now func() time.Time
}

// NewClient validates cfg and returns a client.
func NewClient(cfg Config) (*Client, error) {
	cfg.TmnCode = strings.TrimSpace(cfg.TmnCode)
	cfg.HashSecret = strings.TrimSpace(cfg.HashSecret)
	if cfg.TmnCode == "" || cfg.HashSecret == "" {
		return nil, errors.New("vnpay: merchant code and hash secret are required")
	}
	if strings.TrimSpace(cfg.ReturnURL) == "" {
		return nil, errors.New("vnpay: return url is required")
	}
	if strings.TrimSpace(cfg.PayURL) == "" {
		cfg.PayURL = defaultPayURL
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil || cfg.Timezone == "" {
		loc = time.FixedZone("GMT+7", 7*60*60)
	}
	return &Client{cfg: cfg, loc: loc, now: time.Now}, nil
}

// WithNow overrides the clock.
func (c *Client) WithNow(now func() time.Time) *Client {
	if now != nil {
		c.now = now
	}
	return c
}

// Verify checks a callback's signature with the merchant secret.
func (c *Client) Verify(params url.Values) bool {
	return Verify(c.cfg.HashSecret, params)
}

// NewTxnRef returns a per-attempt transaction reference embedding the order id.
func NewTxnRef(orderID int64, now time.Time) string {
	return strconv.FormatInt(orderID, 10) + "_" + strconv.FormatInt(now.UnixNano(), 36)
}

// ParseTxnRef recovers the order id from a transaction reference.
func ParseTxnRef(ref string) (int64, error) {
	head, _, _ := strings.Cut(strings.TrimSpace(ref), "_")
	id, err := strconv.ParseInt(head, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("vnpay: invalid txn ref %q", ref)
	}
	return id, nil
}

// NormalizeLocale maps anything other than "en" to "vn".
func NormalizeLocale(locale string) string {
	if strings.EqualFold(strings.TrimSpace(locale), "en") {
		return "en"
	}
	return "vn"
}

// BuildPaymentURL assembles and signs the redirect for req.
func (c *Client) BuildPaymentURL(req PaymentRequest) (PaymentURL, error) {
	if req.OrderID <= 0 {
		return PaymentURL{}, errors.New("vnpay: order id is required")
	}
	if !req.Amount.IsPositive() {
		return PaymentURL{}, errors.New("vnpay: amount must be positive")
	}
	now := c.now()
	created := now.In(c.loc)
	ref := NewTxnRef(req.OrderID, now)

	params := url.Values{}
	params.Set("vnp_Version", Version)
	params.Set("vnp_Command", CommandPay)
	params.Set("vnp_TmnCode", c.cfg.TmnCode)
	params.Set("vnp_Locale", NormalizeLocale(req.Locale))
	params.Set("vnp_CurrCode", CurrencyVND)
	params.Set("vnp_TxnRef", ref)
	params.Set("vnp_OrderInfo", fmt.Sprintf("Thanh toan don hang %d", req.OrderID))
	params.Set("vnp_OrderType", OrderTypeOther)
	params.Set("vnp_Amount", strconv.FormatInt(pricing.MinorUnits(req.Amount, AmountScale), 10))
	params.Set("vnp_ReturnUrl", c.cfg.ReturnURL)
	params.Set("vnp_IpAddr", clientIP(req.ClientIP))
	params.Set("vnp_CreateDate", created.Format(dateLayout))
	if c.cfg.ExpireAfter > 0 {
		params.Set("vnp_ExpireDate", created.Add(c.cfg.ExpireAfter).Format(dateLayout))
	}
	if code := strings.TrimSpace(req.BankCode); code != "" {
		params.Set("vnp_BankCode", code)
	}

	canonical := Canonicalize(params)
	signed := canonical + "&" + ParamSecureHash + "=" + Sign(c.cfg.HashSecret, canonical)
	return PaymentURL{
		URL:       c.cfg.PayURL + "?" + signed,
		TxnRef:    ref,
		CreatedAt: now,
	}, nil
}

func clientIP(ip string) string {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return "127.0.0.1"
	}
	return ip
}
