// ABOUTME: Main client for the capture library: conversion, page capture, extraction jobs and chat
// ABOUTME: Offers the core services without the HTTP server

package capturelib

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/anhbatoichoi/content-capture-universe/core/capture"
	"github.com/anhbatoichoi/content-capture-universe/core/chat"
	"github.com/anhbatoichoi/content-capture-universe/core/domain"
	"github.com/anhbatoichoi/content-capture-universe/core/extraction"
	"github.com/anhbatoichoi/content-capture-universe/core/markdown"
	"github.com/anhbatoichoi/content-capture-universe/core/settings"
	"github.com/anhbatoichoi/content-capture-universe/infrastructure/remote"
)

// Client is the main entry point for the capture library
type Client struct {
	converter *markdown.Converter
	jobs      *extraction.JobStore
	chat      *chat.Service
	selectors *settings.Store
	capture   *capture.Service

	config Config

	mu     sync.RWMutex
	closed bool
}

// NewClient creates a client and restores persisted jobs and chat sessions
func NewClient(ctx context.Context, options ...Option) (*Client, error) {
	config := defaultConfig()

	for _, opt := range options {
		if err := opt(&config); err != nil {
			return nil, err
		}
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	if config.ExtractionService == nil || config.ChatService == nil {
		rc := remote.NewClient(config.HTTPClient, config.BaseURL, config.Logger)
		if config.ExtractionService == nil {
			config.ExtractionService = rc
		}
		if config.ChatService == nil {
			config.ChatService = rc
		}
	}

	storeConfig := extraction.DefaultStoreConfig()
	storeConfig.Logger = config.Logger
	storeConfig.ResumePolling = config.ResumePolling
	storeConfig.Scheduler.Interval = config.PollInterval
	if config.MaxChecksPerSecond > 0 {
		burst := int(config.MaxChecksPerSecond)
		if burst < 1 {
			burst = 1
		}
		storeConfig.Scheduler.Limiter = rate.NewLimiter(rate.Limit(config.MaxChecksPerSecond), burst)
	}

	jobs := extraction.NewJobStore(config.ExtractionService, config.Storage, storeConfig)
	if err := jobs.Load(ctx); err != nil {
		return nil, NewError(ErrorTypeInternal, "failed to restore extraction jobs").WithCause(err)
	}

	chatService := chat.NewService(config.ChatService, config.Storage, config.Logger)
	if err := chatService.Load(ctx); err != nil {
		jobs.Close()
		return nil, NewError(ErrorTypeInternal, "failed to restore chat sessions").WithCause(err)
	}

	selectors := settings.NewStore(config.Storage, config.Logger)

	return &Client{
		converter: markdown.NewConverter(),
		jobs:      jobs,
		chat:      chatService,
		selectors: selectors,
		capture: capture.NewService(selectors, capture.Options{
			ReadabilityFallback: config.ReadabilityFallback,
			Logger:              config.Logger,
		}),
		config: config,
	}, nil
}

// Close stops polling and flushes jobs to storage. Closing twice is a no-op.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	return c.jobs.Close()
}

func (c *Client) checkClosed() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClientClosed
	}
	return nil
}

// Convert renders an HTML fragment as Markdown
func (c *Client) Convert(html string) string {
	return c.converter.Convert(html)
}

// Capture extracts readable content from a page's HTML. When asMarkdown is
// set, tiptap content is returned as Markdown.
func (c *Client) Capture(ctx context.Context, pageURL, html string, asMarkdown bool) (*Page, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	page, err := c.capture.Capture(ctx, pageURL, html)
	if err != nil {
		return nil, wrapError(err)
	}
	var conv domain.MarkdownConverter
	if asMarkdown {
		conv = c.converter
	}
	return domainPageToPublic(page, conv), nil
}

// Submit starts an extraction job and begins polling it
func (c *Client) Submit(ctx context.Context, pageURL, title, source string) (*Job, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	if source != "" && source != SourceStandard && source != SourceTiptap {
		return nil, NewError(ErrorTypeValidation, "source must be tiptap or standard")
	}
	id, err := c.jobs.Submit(ctx, pageURL, title, domain.PageSource(source))
	if err != nil {
		return nil, wrapError(err)
	}
	return c.Job(id)
}

// Jobs returns every job, newest first. Tiptap content is rendered as Markdown.
func (c *Client) Jobs() []*Job {
	list := c.jobs.List()
	out := make([]*Job, 0, len(list))
	for _, j := range list {
		out = append(out, domainJobToPublic(j, c.converter))
	}
	return out
}

// Job returns one job by id
func (c *Client) Job(id string) (*Job, error) {
	j, err := c.jobs.Get(id)
	if err != nil {
		return nil, wrapError(err)
	}
	return domainJobToPublic(j, c.converter), nil
}

// Refresh checks a job's status immediately
func (c *Client) Refresh(ctx context.Context, id string) (*Job, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	j, err := c.jobs.Refresh(ctx, id)
	if err != nil {
		return nil, wrapError(err)
	}
	return domainJobToPublic(j, c.converter), nil
}

// Clear stops all polling and removes every job
func (c *Client) Clear(ctx context.Context) error {
	if err := c.checkClosed(); err != nil {
		return err
	}
	return wrapError(c.jobs.ClearAll(ctx))
}

// WaitForJob blocks until the job is done or failed, or ctx ends
func (c *Client) WaitForJob(ctx context.Context, id string) (*Job, error) {
	ticker := time.NewTicker(c.config.WaitInterval)
	defer ticker.Stop()

	for {
		job, err := c.Job(id)
		if err != nil {
			return nil, err
		}
		if job.Done() {
			return job, nil
		}

		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-ticker.C:
		}
	}
}

// SendMessage sends a chat message in the current session and returns the
// assistant reply
func (c *Client) SendMessage(ctx context.Context, text string) (string, error) {
	if err := c.checkClosed(); err != nil {
		return "", err
	}
	session, err := c.chat.SendMessage(ctx, text)
	if err != nil {
		return "", wrapError(err)
	}
	return session.Messages[len(session.Messages)-1].Content, nil
}

// NewChat starts a new chat session and makes it current
func (c *Client) NewChat() string {
	return c.chat.CreateSession().ID
}

// Selectors returns the effective capture selectors
func (c *Client) Selectors(ctx context.Context) (domain.SelectorSettings, error) {
	s, err := c.selectors.Get(ctx)
	return s, wrapError(err)
}

// SetSelectors stores selector overrides and returns the effective selectors
func (c *Client) SetSelectors(ctx context.Context, overrides domain.SelectorSettings) (domain.SelectorSettings, error) {
	s, err := c.selectors.Update(ctx, overrides)
	return s, wrapError(err)
}
