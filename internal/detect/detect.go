// Package detect implements the multi-signal framework detection engine.
//
// Detection consults, in order: an in-process cache, a disk-backed cache, the
// project's dependency manifest, and a bounded file-pattern scan. Dependency
// detection evaluates every registered rule and ranks all matches by confidence
// with priority as the tiebreak, so a meta-framework beats the base framework
// it depends on regardless of registration order. Detection never fails: any
// internal error degrades to the vanilla default.
package detect

import (
	"context"
	"sync"
	"time"

	"github.com/launchpad-dev/launchpad/internal/errors"
	"github.com/launchpad-dev/launchpad/internal/logging"
	"github.com/launchpad-dev/launchpad/internal/manifest"
)

// Source records which signal produced a detection result.
type Source string

const (
	SourceDependency Source = "dependency"
	SourceFile       Source = "file"
	SourceConfig     Source = "config"
	SourceDefault    Source = "default"
)

// Result is the outcome of one detection attempt.
type Result struct {
	Framework  Framework `json:"framework"`
	Confidence float64   `json:"confidence"`
	Source     Source    `json:"source"`
}

// FileMatcher is the bounded scanner collaborator.
type FileMatcher interface {
	Match(ctx context.Context, root string, patterns []string) (bool, error)
}

// ManifestReader loads the project's dependency manifest.
type ManifestReader func(dir string) (*manifest.Manifest, error)

// DefaultScanTimeout bounds the file-pattern fallback per pattern set.
const DefaultScanTimeout = 5 * time.Second

// Options configures an Engine. Zero values take documented defaults.
type Options struct {
	Detectors   []Detector
	Matcher     FileMatcher
	Store       Store
	Manifest    ManifestReader
	ScanTimeout time.Duration
	Logger      logging.Logger
}

// Engine detects which UI framework a project uses.
type Engine struct {
	detectors   []Detector
	matcher     FileMatcher
	store       Store
	manifest    ManifestReader
	scanTimeout time.Duration
	logger      logging.Logger

	mutex  sync.RWMutex
	memory map[string]Result
}

// NewEngine creates a detection engine. The memory cache lives until Reset.
func NewEngine(opts Options) *Engine {
	if opts.Detectors == nil {
		opts.Detectors = Registry()
	}
	if opts.Manifest == nil {
		opts.Manifest = manifest.Read
	}
	if opts.ScanTimeout <= 0 {
		opts.ScanTimeout = DefaultScanTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger{}
	}
	return &Engine{
		detectors:   opts.Detectors,
		matcher:     opts.Matcher,
		store:       opts.Store,
		manifest:    opts.Manifest,
		scanTimeout: opts.ScanTimeout,
		logger:      opts.Logger.WithComponent("detect"),
		memory:      make(map[string]Result),
	}
}

// Detect resolves the framework for projectRoot. It never returns an error:
// internal failures log and fall back to the vanilla default. With force set,
// both caches are bypassed and rewritten.
func (e *Engine) Detect(ctx context.Context, projectRoot string, force bool) Result {
	key := keyFor(projectRoot)

	if force {
		e.invalidate(ctx, key)
	} else {
		if result, ok := e.cached(key); ok {
			return result
		}
		if result, ok := e.fromStore(key); ok {
			e.remember(key, result)
			return result
		}
	}

	result := e.detect(ctx, projectRoot)

	e.remember(key, result)
	e.persist(ctx, key, result)
	return result
}

// Reset clears the in-process cache. The disk cache is untouched; it only
// yields to the force flag.
func (e *Engine) Reset() {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.memory = make(map[string]Result)
}

func (e *Engine) detect(ctx context.Context, projectRoot string) Result {
	m, err := e.manifest(projectRoot)
	if err != nil {
		e.logger.Warn(ctx, &errors.DetectionFailure{ProjectRoot: projectRoot, Stage: "manifest", Err: err},
			"manifest unreadable, using default framework")
		return defaultResult()
	}

	if result, ok := e.detectByDependency(m.Dependencies); ok {
		return result
	}
	if result, ok := e.detectByFiles(ctx, projectRoot); ok {
		return result
	}
	return defaultResult()
}

// detectByDependency evaluates every rule, then ranks all matches. First-match
// selection would let a base framework shadow the meta-framework built on it.
func (e *Engine) detectByDependency(deps map[string]string) (Result, bool) {
	type match struct {
		detector   Detector
		confidence float64
	}
	var matches []match

	for _, d := range e.detectors {
		if d.Rule == nil {
			continue
		}
		if detected, confidence := d.Rule(deps); detected {
			matches = append(matches, match{detector: d, confidence: confidence})
		}
	}
	if len(matches) == 0 {
		return Result{}, false
	}

	best := matches[0]
	for _, m := range matches[1:] {
		if m.confidence > best.confidence ||
			(m.confidence == best.confidence && m.detector.Priority > best.detector.Priority) {
			best = m
		}
	}

	return Result{
		Framework:  best.detector.Type,
		Confidence: best.confidence,
		Source:     SourceDependency,
	}, true
}

// detectByFiles runs the bounded scan for every detector declaring patterns
// and picks the highest-priority match. A scan timeout counts as "not found".
func (e *Engine) detectByFiles(ctx context.Context, projectRoot string) (Result, bool) {
	if e.matcher == nil {
		return Result{}, false
	}

	var best *Detector
	for i := range e.detectors {
		d := e.detectors[i]
		if len(d.FilePatterns) == 0 {
			continue
		}

		scanCtx, cancel := context.WithTimeout(ctx, e.scanTimeout)
		matched, err := e.matcher.Match(scanCtx, projectRoot, d.FilePatterns)
		cancel()

		if err != nil {
			e.logger.Debug(ctx, "file scan ended early, treating as not found",
				"framework", string(d.Type), "reason", err.Error())
			continue
		}
		if matched && (best == nil || d.Priority > best.Priority) {
			best = &e.detectors[i]
		}
	}

	if best == nil {
		return Result{}, false
	}
	return Result{
		Framework:  best.Type,
		Confidence: 0.5,
		Source:     SourceFile,
	}, true
}

func defaultResult() Result {
	return Result{Framework: FrameworkVanilla, Confidence: 0, Source: SourceDefault}
}

func (e *Engine) cached(key string) (Result, bool) {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	result, ok := e.memory[key]
	return result, ok
}

func (e *Engine) remember(key string, result Result) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.memory[key] = result
}

func (e *Engine) fromStore(key string) (Result, bool) {
	if e.store == nil {
		return Result{}, false
	}
	entry, ok := e.store.Get(key)
	if !ok {
		return Result{}, false
	}
	source := entry.Source
	if source == "" {
		source = SourceDefault
	}
	return Result{Framework: entry.Framework, Confidence: confidenceFor(source), Source: source}, true
}

func confidenceFor(source Source) float64 {
	switch source {
	case SourceDependency:
		return 0.8
	case SourceFile:
		return 0.5
	default:
		return 0
	}
}

func (e *Engine) invalidate(ctx context.Context, key string) {
	e.mutex.Lock()
	delete(e.memory, key)
	e.mutex.Unlock()

	if e.store != nil {
		if err := e.store.Invalidate(key); err != nil {
			e.logger.Debug(ctx, "cache invalidation failed", "reason", err.Error())
		}
	}
}

// persist is best-effort: a failed cache write never fails detection.
func (e *Engine) persist(ctx context.Context, key string, result Result) {
	if e.store == nil {
		return
	}
	entry := CacheEntry{Framework: result.Framework, Source: result.Source}
	if err := e.store.Set(key, entry); err != nil {
		e.logger.Warn(ctx, &errors.DetectionFailure{ProjectRoot: key, Stage: "cache", Err: err},
			"detection cache write failed")
	}
}
