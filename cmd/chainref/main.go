package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/reoring/chainref"
	"github.com/reoring/chainref/i18n"
	"github.com/reoring/chainref/internal/config"
	"github.com/reoring/chainref/internal/loader"
	"github.com/reoring/chainref/internal/logging"
	"github.com/reoring/chainref/internal/metrics"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func usage() {
	fmt.Fprintln(os.Stderr, "chainref CLI\n\nUsage:\n  chainref [-config f] [-root dir] [-log-level l] [-metrics-file f] [-lang en|ja] <command>\n\nCommands:\n  sort                 canonicalize every record file in place\n  check                exit 1 when a record file is not canonical\n  validate             schema, duplicate and entity reference checks\n  schema [-type t] [-o dir]  print or write the generated JSON Schemas")
}

// env bundles what every command needs.
type env struct {
	cfg     *config.Config
	log     *logging.Entry
	metrics *metrics.Metrics
	out     io.Writer
}

func run(args []string, out io.Writer) int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "chainref: load .env: %v\n", err)
		return 1
	}

	gfs := flag.NewFlagSet("chainref", flag.ContinueOnError)
	gfs.Usage = usage
	var configPath, root, level, metricsFile, lang string
	gfs.StringVar(&configPath, "config", "", "YAML config file")
	gfs.StringVar(&root, "root", "", "data root directory (overrides ROOT_DIR)")
	gfs.StringVar(&level, "log-level", "", "log level (overrides LOG_LEVEL)")
	gfs.StringVar(&metricsFile, "metrics-file", "", "Prometheus textfile to write at exit")
	gfs.StringVar(&lang, "lang", "en", "message language (en or ja)")
	if err := gfs.Parse(args); err != nil {
		return 2
	}
	if gfs.NArg() < 1 {
		usage()
		return 2
	}
	i18n.SetLanguage(lang)

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chainref: %v\n", err)
		return 1
	}
	if root != "" {
		cfg.RootDir = root
	}
	if level != "" {
		cfg.Log.Level = level
	}
	if metricsFile != "" {
		cfg.Metrics.File = metricsFile
	}

	log, err := logging.New(logging.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "chainref: %v\n", err)
		return 1
	}
	sub := gfs.Arg(0)
	e := &env{
		cfg:     cfg,
		log:     log.WithFields(logging.Fields{"run_id": uuid.NewString(), "command": sub}),
		metrics: metrics.New(),
		out:     out,
	}

	start := time.Now()
	var code int
	switch sub {
	case "sort":
		code = e.sortCmd(false)
	case "check":
		code = e.sortCmd(true)
	case "validate":
		code = e.validateCmd()
	case "schema":
		code = e.schemaCmd(gfs.Args()[1:])
	default:
		usage()
		return 2
	}

	e.metrics.RunDuration.Observe(time.Since(start).Seconds())
	if code == 0 {
		e.metrics.RunSuccess.Set(1)
	}
	if err := e.metrics.Flush(cfg.Metrics.File); err != nil {
		e.log.WithError(err).Error("write metrics")
	}
	return code
}

// load discovers and decodes the data root.
func (e *env) load() (*loader.Set, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	paths, err := loader.Discover(e.cfg.RootDir)
	if err != nil {
		return nil, err
	}
	set, err := loader.Load(e.cfg.RootDir, paths)
	if err != nil {
		return nil, err
	}
	e.log.WithFields(logging.Fields{"root": e.cfg.RootDir, "files": len(paths)}).Info("loaded record files")
	return set, nil
}

func (e *env) sortCmd(dryRun bool) int {
	lg := e.log.WithComponent("sorter")
	set, err := e.load()
	if err != nil {
		lg.WithError(err).Error("load failed")
		return 1
	}
	if len(set.Failed) > 0 {
		rep := lg.Reporter()
		for _, f := range set.FailedFindings() {
			rep.Report(f)
		}
		lg.WithFields(logging.Fields{"failed": len(set.Failed)}).Error("undecodable files, nothing written")
		return 1
	}
	sorted, err := chainref.SortPathBatches(set.Batches)
	if err != nil {
		lg.WithError(err).Error("sort failed, nothing written")
		return 1
	}
	plan, err := loader.Plan(set.Root, sorted)
	if err != nil {
		lg.WithError(err).Error("encode failed, nothing written")
		return 1
	}
	command := "sort"
	if dryRun {
		command = "check"
	}
	e.metrics.FilesProcessed.WithLabelValues(command).Add(float64(len(plan)))
	for p, recs := range sorted {
		t, _ := chainref.RecordTypeForPath(p)
		e.metrics.Records.WithLabelValues(string(t)).Add(float64(len(recs)))
	}

	if dryRun {
		stale := 0
		for _, c := range plan {
			if c.Changed {
				stale++
				lg.WithFields(logging.Fields{"source": c.Path}).Warn("not canonical")
			}
		}
		if stale > 0 {
			lg.WithFields(logging.Fields{"stale": stale}).Error("run `chainref sort` to fix")
			return 1
		}
		lg.Info("all files canonical")
		return 0
	}

	n, err := loader.Apply(set.Root, plan)
	e.metrics.FilesRewritten.Add(float64(n))
	if err != nil {
		lg.WithError(err).Error("write failed")
		return 1
	}
	for _, c := range plan {
		if c.Changed {
			t, _ := chainref.RecordTypeForPath(c.Path)
			logging.LogDataFlowEntry(lg, "sorter", c.Path, len(sorted[c.Path]), string(t))
		}
	}
	lg.WithFields(logging.Fields{"files": len(plan), "rewritten": n}).Info("sorted JSONs successfully")
	return 0
}

func (e *env) validateCmd() int {
	lg := e.log.WithComponent("validator")
	set, err := e.load()
	if err != nil {
		lg.WithError(err).Error("load failed")
		return 1
	}
	ignore, err := loader.ReadIgnoreFile(e.cfg.IgnorePath())
	if err != nil {
		lg.WithError(err).Error("read ignore file")
		return 1
	}
	reg, err := chainref.NewRegistry()
	if err != nil {
		lg.WithError(err).Error("build schema registry")
		return 1
	}
	grouped, err := chainref.GroupByType(set.Batches)
	if err != nil {
		lg.WithError(err).Error("group batches")
		return 1
	}

	rep := ignore.Reporter(lg.Reporter())
	for _, f := range set.FailedFindings() {
		rep.Report(f)
	}
	v := chainref.NewValidator(reg, chainref.WithReporter(rep), chainref.WithSourceIssues(set.Issues))
	report, err := v.Validate(grouped)
	if err != nil {
		lg.WithError(err).Error("validate")
		return 1
	}
	report.Add(set.FailedFindings()...)
	report.Add(v.CheckReferences(chainref.GroupByChain(set.Batches))...)
	report = report.Filter(ignore)

	e.metrics.FilesProcessed.WithLabelValues("validate").Add(float64(report.Batches + len(set.Failed)))
	for t, bs := range grouped {
		for _, b := range bs {
			if items, ok := b.Data.([]any); ok {
				e.metrics.Records.WithLabelValues(string(t)).Add(float64(len(items)))
			}
		}
	}
	e.metrics.ObserveReport(report)

	fields := logging.Fields{"files": report.Batches, "records": report.Records, "findings": len(report.Findings)}
	if report.HasError {
		lg.WithFields(fields).Error("validation failed")
		return 1
	}
	lg.WithFields(fields).Info("validated JSONs successfully")
	return 0
}

func (e *env) schemaCmd(args []string) int {
	sfs := flag.NewFlagSet("schema", flag.ContinueOnError)
	var typ, outDir string
	sfs.StringVar(&typ, "type", "", "record type (default: all)")
	sfs.StringVar(&outDir, "o", "", "output directory (default: stdout)")
	if err := sfs.Parse(args); err != nil {
		return 2
	}
	lg := e.log.WithComponent("schema")

	types := chainref.AllRecordTypes()
	if typ != "" {
		t, err := chainref.ParseRecordType(typ)
		if err != nil {
			lg.WithError(err).Error("invalid -type")
			return 2
		}
		types = []chainref.RecordType{t}
	}
	reg, err := chainref.NewRegistry()
	if err != nil {
		lg.WithError(err).Error("build schema registry")
		return 1
	}
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			lg.WithError(err).Error("creating output dir")
			return 1
		}
	}
	for _, t := range types {
		s, err := reg.Schema(t)
		if err != nil {
			lg.WithError(err).Error("lookup schema")
			return 1
		}
		b, err := json.MarshalIndent(s.Document(), "", "  ")
		if err != nil {
			lg.WithError(err).Error("encode schema")
			return 1
		}
		b = append(b, '\n')
		if outDir == "" {
			if _, err := e.out.Write(b); err != nil {
				return 1
			}
			continue
		}
		path := filepath.Join(outDir, string(t)+".schema.json")
		if err := os.WriteFile(path, b, 0o644); err != nil {
			lg.WithError(err).Error("writing output")
			return 1
		}
		lg.WithFields(logging.Fields{"path": path}).Info("wrote schema")
	}
	return 0
}
