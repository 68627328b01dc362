// internal/filler/filler.go
package filler

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/zhangxinyong12/auto-fill-extension/internal/config"
	"github.com/zhangxinyong12/auto-fill-extension/internal/dom"
	"github.com/zhangxinyong12/auto-fill-extension/internal/fields"
	"github.com/zhangxinyong12/auto-fill-extension/internal/inject"
	"github.com/zhangxinyong12/auto-fill-extension/internal/scope"
)

// Driver is the page the filler operates on: the browser session in
// production, a scripted fake in tests.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	dom.Evaluator
}

// Generator is the external collaborator that synthesizes values for
// extracted descriptors.
type Generator interface {
	Generate(ctx context.Context, descs []fields.Descriptor) (inject.ValueMap, error)
}

// Filler runs the complete fill pipeline: gate, extract, generate, inject.
type Filler struct {
	driver   Driver
	gen      Generator
	injector *inject.Injector
	repo     config.Repository
	sites    config.SitesConfig
	logger   *zap.Logger

	// inflight collapses overlapping fill triggers for the same hostname.
	// This is the only serialization primitive; it guards re-triggering,
	// not the injection pass itself.
	inflight singleflight.Group
}

// Report is the user-facing outcome of one fill operation.
type Report struct {
	OperationID string          `json:"operation_id"`
	URL         string          `json:"url"`
	FieldCount  int             `json:"field_count"`
	Written     int             `json:"written"`
	Message     string          `json:"message,omitempty"`
	Values      inject.ValueMap `json:"values,omitempty"`
}

// New wires a Filler.
func New(driver Driver, gen Generator, injector *inject.Injector, repo config.Repository, sites config.SitesConfig, logger *zap.Logger) *Filler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Filler{
		driver:   driver,
		gen:      gen,
		injector: injector,
		repo:     repo,
		sites:    sites,
		logger:   logger.Named("filler"),
	}
}

// Fill runs the full pipeline against the page. Overlapping calls for the
// same hostname share one execution. A page with zero fillable fields is a
// normal outcome reported through Report.Message, not an error.
func (f *Filler) Fill(ctx context.Context, rawURL string) (*Report, error) {
	host, err := hostOf(rawURL)
	if err != nil {
		return nil, err
	}

	v, err, _ := f.inflight.Do(host, func() (interface{}, error) {
		return f.fill(ctx, rawURL, host, false)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Report), nil
}

// Preview runs the pipeline up to generation and returns the values without
// writing them, for dry runs.
func (f *Filler) Preview(ctx context.Context, rawURL string) (*Report, error) {
	host, err := hostOf(rawURL)
	if err != nil {
		return nil, err
	}
	return f.fill(ctx, rawURL, host, true)
}

func (f *Filler) fill(ctx context.Context, rawURL, host string, dryRun bool) (*Report, error) {
	report := &Report{
		OperationID: uuid.NewString(),
		URL:         rawURL,
	}
	logger := f.logger.With(zap.String("operation", report.OperationID), zap.String("host", host))

	if ok, reason := f.allowed(ctx, host); !ok {
		return nil, fmt.Errorf("filling not allowed on %s: %s", host, reason)
	}

	if err := f.driver.Navigate(ctx, rawURL); err != nil {
		return nil, err
	}

	// Extraction pass: fresh snapshot, fresh scope.
	snap, err := dom.Capture(ctx, f.driver)
	if err != nil {
		return nil, err
	}
	root := scope.Resolve(snap, logger)
	descs := fields.Extract(snap, root, logger)
	report.FieldCount = len(descs)
	if len(descs) == 0 {
		report.Message = "no fillable fields detected"
		logger.Info("nothing to fill")
		return report, nil
	}
	logger.Info("extracted fields", zap.Int("count", len(descs)))

	values, err := f.gen.Generate(ctx, descs)
	if err != nil {
		return nil, fmt.Errorf("value generation failed: %w", err)
	}
	report.Values = values

	if dryRun {
		report.Message = "dry run: values not written"
		return report, nil
	}

	// Injection pass: the DOM may have changed while the model was
	// thinking, so capture again and let the injector re-derive everything.
	snap, err = dom.Capture(ctx, f.driver)
	if err != nil {
		return nil, err
	}
	stats := f.injector.Apply(ctx, snap, values)
	report.Written = stats.Written
	return report, nil
}

// allowed applies the enable flag and the per-site allow-list, with
// repository overrides. The permanent development hostnames bypass both.
func (f *Filler) allowed(ctx context.Context, host string) (bool, string) {
	enabled := f.sites.Enabled
	if f.repo != nil {
		if v, ok, err := f.repo.Get(ctx, "enabled"); err == nil && ok {
			enabled = v == "true"
		}
	}
	if !enabled {
		return false, "auto-fill is disabled"
	}

	if config.IsPermanentlyAllowed(host) {
		return true, ""
	}
	if f.repo != nil {
		if v, ok, err := f.repo.Get(ctx, "site:"+host); err == nil && ok {
			switch v {
			case "allow":
				return true, ""
			case "deny":
				return false, "host is denied"
			}
		}
	}
	if f.sites.Allows(host) {
		return true, ""
	}
	return false, "host is not on the allow-list"
}

func hostOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse target URL: %w", err)
	}
	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("target URL has no hostname: %s", rawURL)
	}
	return host, nil
}
