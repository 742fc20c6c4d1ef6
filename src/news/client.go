package news

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"

	"c79sniper/src/errs"
	"c79sniper/src/model"
)

// Client fetches the weekly economic calendar feed.
type Client struct {
	feedURL string
	http    *resty.Client
}

func NewClient(feedURL string) *Client {
	httpClient := resty.New().
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || (r != nil && r.StatusCode() >= 500)
		})

	return &Client{feedURL: feedURL, http: httpClient}
}

// FetchWeek downloads and parses the weekly XML document.
func (c *Client) FetchWeek(ctx context.Context) ([]model.NewsEvent, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("accept", "application/xml").
		Get(c.feedURL)
	if err != nil {
		return nil, errs.NewConnectivityError("news_feed", err)
	}
	if resp.StatusCode() != 200 {
		return nil, errs.NewConnectivityError("news_feed",
			fmt.Errorf("unexpected status %d", resp.StatusCode()))
	}

	events, err := model.ParseCalendarXML(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("parse calendar feed: %w", err)
	}

	logger.Infof("Fetched %d calendar events", len(events))
	return events, nil
}
