package clients

import (
	"github.com/libertyplace/rentapp/internal"
	"github.com/libertyplace/rentapp/internal/config"
)

// RequestBuilder bundles the outbound clients built from one config.
type RequestBuilder struct {
	Board   *BoardClient
	Webhook *WebhookClient
	Cache   *RedisUnitCache
}

// NewRequestBuilder wires the HTTP, cache, board and webhook clients. The
// board client is left nil when no API token is configured.
func NewRequestBuilder(cfg *config.Config, log *internal.Logger) *RequestBuilder {
	log = internal.OrDefault(log)
	opts := &HTTPClientOptions{
		RetryCount:       cfg.HTTPClient.RetryCount,
		RetryWaitTime:    cfg.HTTPClient.RetryWaitTime,
		RetryMaxWaitTime: cfg.HTTPClient.RetryMaxWaitTime,
		TimeOut:          cfg.HTTPClient.Timeout,
		UserAgent:        cfg.HTTPClient.UserAgent,
	}

	rb := &RequestBuilder{}
	if cfg.Redis.Enabled {
		rb.Cache = NewRedisUnitCache(NewRedisClient(RedisOptions{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}), cfg.Board.CacheTTL)
	}

	var cache UnitCache
	if rb.Cache != nil {
		cache = rb.Cache
	}
	board, err := NewBoardClient(NewHTTPClient(opts), BoardOptions{
		APIURL:           cfg.Board.APIURL,
		Token:            cfg.Board.APIToken,
		UnitsBoardID:     cfg.Board.UnitsBoardID,
		DocumentsBoardID: cfg.Board.DocumentsBoardID,
		VacantLabel:      cfg.Board.VacantLabel,
		MissingLabel:     cfg.Board.MissingLabel,
		Columns: BoardColumns{
			PropertyName:  cfg.Board.Columns.PropertyName,
			UnitType:      cfg.Board.Columns.UnitType,
			Status:        cfg.Board.Columns.Status,
			ApplicantID:   cfg.Board.Columns.ApplicantID,
			SubitemStatus: cfg.Board.Columns.SubitemStatus,
			ApplicantType: cfg.Board.Columns.ApplicantType,
		},
	}, cache, log)
	if err != nil {
		log.Warn("Board client disabled: %v", err)
	} else {
		rb.Board = board
	}

	webhookOpts := *opts
	webhookOpts.RetryCount = 0
	webhookOpts.TimeOut = cfg.Webhooks.Timeout
	rb.Webhook = NewWebhookClient(NewHTTPClient(&webhookOpts), WebhookOptions{
		FileURL:       cfg.Webhooks.FileURL,
		FormURL:       cfg.Webhooks.FormURL,
		MaxConcurrent: cfg.Webhooks.MaxConcurrent,
	}, log)
	return rb
}
