package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"jamii/internal/config"
	"jamii/internal/domain"
	"jamii/internal/utils"
)

// Client talks to the Daraja HTTP API. It only returns an error for
// transport/config failures; a gateway-level decline comes back inside
// the result value so callers can record the response code.
type Client struct {
	env  config.MpesaEnv
	http *http.Client

	tokenMu     sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewClient(env config.MpesaEnv) *Client {
	return &Client{
		env:  env,
		http: &http.Client{Timeout: env.Timeout},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            string `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type stkPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
	ErrorCode           string `json:"errorCode"`
	ErrorMessage        string `json:"errorMessage"`
}

type stkQueryRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
}

type stkQueryResponse struct {
	ResponseCode string `json:"ResponseCode"`
	ResultCode   string `json:"ResultCode"`
	ResultDesc   string `json:"ResultDesc"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

func (c *Client) InitiateSTKPush(ctx context.Context, phone string, amount float64, accountRef, description string) (InitiateResult, error) {
	token, err := c.token(ctx)
	if err != nil {
		return InitiateResult{}, err
	}

	ts := utils.GatewayTimestamp(time.Now())
	body := stkPushRequest{
		BusinessShortCode: c.env.ShortCode,
		Password:          c.password(ts),
		Timestamp:         ts,
		TransactionType:   "CustomerPayBillOnline",
		// Daraja rejects decimals on STK push; amounts are whole shillings.
		Amount:           strconv.FormatInt(int64(amount+0.5), 10),
		PartyA:           phone,
		PartyB:           c.env.ShortCode,
		PhoneNumber:      phone,
		CallBackURL:      c.env.CallbackURL,
		AccountReference: accountRef,
		TransactionDesc:  description,
	}

	var resp stkPushResponse
	if err := c.postJSON(ctx, "/mpesa/stkpush/v1/processrequest", token, body, &resp); err != nil {
		return InitiateResult{}, domain.GatewayTransportError{Op: "initiate", Err: err}
	}

	if resp.ErrorCode != "" {
		return InitiateResult{
			Success:             false,
			ResponseCode:        resp.ErrorCode,
			ResponseDescription: resp.ErrorMessage,
		}, nil
	}

	return InitiateResult{
		Success:             resp.ResponseCode == "0",
		CheckoutRequestID:   resp.CheckoutRequestID,
		ResponseCode:        resp.ResponseCode,
		ResponseDescription: resp.ResponseDescription,
	}, nil
}

func (c *Client) QueryStatus(ctx context.Context, checkoutRequestID string) (StatusResult, error) {
	token, err := c.token(ctx)
	if err != nil {
		return StatusResult{}, err
	}

	ts := utils.GatewayTimestamp(time.Now())
	body := stkQueryRequest{
		BusinessShortCode: c.env.ShortCode,
		Password:          c.password(ts),
		Timestamp:         ts,
		CheckoutRequestID: checkoutRequestID,
	}

	var resp stkQueryResponse
	if err := c.postJSON(ctx, "/mpesa/stkpushquery/v1/query", token, body, &resp); err != nil {
		return StatusResult{}, domain.GatewayTransportError{Op: "query", Err: err}
	}

	// While the push is still in flight, Daraja answers the query endpoint
	// with an error envelope instead of a ResultCode.
	if resp.ErrorCode != "" {
		return StatusResult{ResultCode: CodeStillProcessing, ResultDescription: resp.ErrorMessage}, nil
	}

	code, err := strconv.Atoi(utils.TrimOrEmpty(resp.ResultCode))
	if err != nil {
		return StatusResult{}, domain.GatewayTransportError{Op: "query", Err: fmt.Errorf("unparseable result code %q", resp.ResultCode)}
	}

	return StatusResult{ResultCode: code, ResultDescription: resp.ResultDesc}, nil
}

func (c *Client) ValidateCallback(raw []byte) bool {
	return ValidateCallbackPayload(raw)
}

func (c *Client) ParseCallback(raw []byte) (CallbackData, error) {
	return ParseCallbackPayload(raw)
}

// token returns a cached OAuth access token, refreshing when expired.
func (c *Client) token(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	if c.env.ConsumerKey == "" || c.env.ConsumerSecret == "" {
		return "", domain.GatewayTransportError{Op: "auth", Err: fmt.Errorf("consumer key/secret not configured")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.env.BaseURL+"/oauth/v1/generate?grant_type=client_credentials", nil)
	if err != nil {
		return "", domain.GatewayTransportError{Op: "auth", Err: err}
	}
	req.SetBasicAuth(c.env.ConsumerKey, c.env.ConsumerSecret)

	res, err := c.http.Do(req)
	if err != nil {
		return "", domain.GatewayTransportError{Op: "auth", Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", domain.GatewayTransportError{Op: "auth", Err: fmt.Errorf("token endpoint status %d", res.StatusCode)}
	}

	var tok tokenResponse
	if err := json.NewDecoder(res.Body).Decode(&tok); err != nil {
		return "", domain.GatewayTransportError{Op: "auth", Err: err}
	}
	if tok.AccessToken == "" {
		return "", domain.GatewayTransportError{Op: "auth", Err: fmt.Errorf("empty access token")}
	}

	ttl := 3600
	if n, err := strconv.Atoi(tok.ExpiresIn); err == nil && n > 0 {
		ttl = n
	}

	c.accessToken = tok.AccessToken
	// renew one minute early so in-flight requests never carry a stale token
	c.tokenExpiry = time.Now().Add(time.Duration(ttl-60) * time.Second)
	return c.accessToken, nil
}

func (c *Client) password(timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(c.env.ShortCode + c.env.Passkey + timestamp))
}

func (c *Client) postJSON(ctx context.Context, path, token string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.env.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	return json.NewDecoder(res.Body).Decode(out)
}
