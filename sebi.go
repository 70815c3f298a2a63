package sebi

import (
	"go.uber.org/zap"

	"github.com/0xphen/sebi/artifact"
	"github.com/0xphen/sebi/policy"
	"github.com/0xphen/sebi/report"
	"github.com/0xphen/sebi/rules"
	"github.com/0xphen/sebi/signals"
	"github.com/0xphen/sebi/wasm"
)

// ToolName is the primary tool identity.
const ToolName = "sebi"

// Inspector runs the analysis pipeline. The zero configuration (SHA-256
// digest, default policy, no-op logger) is what New returns without
// options; every Inspect call's state is private to that call, so one
// Inspector may serve many goroutines.
type Inspector struct {
	digest artifact.Digest
	policy policy.Policy
	logger *zap.Logger
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithDigest substitutes the content digest capability.
func WithDigest(d artifact.Digest) Option {
	return func(i *Inspector) { i.digest = d }
}

// WithPolicy substitutes the classification policy.
func WithPolicy(p policy.Policy) Option {
	return func(i *Inspector) { i.policy = p }
}

// WithLogger attaches a logger for stage-level diagnostics. Logging never
// influences report content.
func WithLogger(l *zap.Logger) Option {
	return func(i *Inspector) { i.logger = l }
}

// New creates an Inspector.
func New(opts ...Option) *Inspector {
	i := &Inspector{
		digest: artifact.SHA256,
		policy: policy.Default(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Inspect loads the artifact at path and walks the full pipeline:
//
//	bytes → Artifact → RawFacts → Signals → (TriggeredRules, Classification) → Report
//
// IO failures return an error with no report. Parse failures still return
// a report: its analysis status is parse_error, its signals are
// conservative defaults, and its artifact identity is intact.
func (i *Inspector) Inspect(path string, tool report.ToolInfo) (*report.Report, error) {
	art, err := artifact.Load(path, i.digest)
	if err != nil {
		return nil, err
	}
	return i.analyze(art, tool), nil
}

// InspectBytes analyzes an in-memory binary. name is informational and may
// be empty.
func (i *Inspector) InspectBytes(name string, data []byte, tool report.ToolInfo) (*report.Report, error) {
	return i.analyze(artifact.FromBytes(name, data, i.digest), tool), nil
}

func (i *Inspector) analyze(art *artifact.Artifact, tool report.ToolInfo) *report.Report {
	i.logger.Debug("artifact loaded",
		zap.Uint64("size_bytes", art.SizeBytes),
		zap.String("digest", art.HashHex),
	)

	res := wasm.Parse(art.Bytes)
	i.logger.Debug("binary parsed",
		zap.String("status", string(res.Status)),
		zap.Int("warnings", len(res.Warnings)),
	)

	var sig signals.Signals
	if res.Status == wasm.StatusParseError {
		sig = signals.Empty()
	} else {
		sig = signals.Project(&res.Facts)
	}

	triggered := rules.Evaluate(rules.Context{
		Signals:           &sig,
		Policy:            i.policy,
		ArtifactSizeBytes: art.SizeBytes,
	})
	classification := rules.Classify(triggered, i.policy.Name)
	i.logger.Debug("rules evaluated",
		zap.Int("triggered", len(triggered)),
		zap.String("level", string(classification.Level)),
	)

	return report.New(tool, art, sig, string(res.Status), res.Warnings, triggered, classification)
}

// Inspect runs the pipeline with the default configuration.
func Inspect(path string, tool report.ToolInfo) (*report.Report, error) {
	return New().Inspect(path, tool)
}
