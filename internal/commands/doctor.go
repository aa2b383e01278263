package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/NielsdaWheelz/tixmail/internal/config"
	"github.com/NielsdaWheelz/tixmail/internal/core"
	"github.com/NielsdaWheelz/tixmail/internal/errors"
	"github.com/NielsdaWheelz/tixmail/internal/fs"
	"github.com/NielsdaWheelz/tixmail/internal/store"
)

// DoctorOpts holds options for the doctor command.
type DoctorOpts struct {
	ConfigPath string
	Environ    map[string]string
}

// DoctorReport holds all the data for doctor output.
type DoctorReport struct {
	// Config resolution
	ConfigPath  string
	ConfigFound bool
	Roster      string
	LedgerFmt   string
	Success     string
	Failure     string
	Snapshot    string
	OutputDir   string
	StateDir    string
	BaseToken   int
	RetryFailed bool

	// Environment (values other than the password are shown)
	Sender     string
	SMTPServer string
	SMTPPort   string
	TLSPolicy  string
	Auth       string
	Password   bool // set, never printed

	// Resources
	ArtifactKind string
	Template     string
	Font         string

	// Data
	Participants   int
	SuccessEntries int
	FailureEntries int
	NextToken      int
}

// Doctor implements `tixmail doctor`: resolves the config and checks that a
// send could start. The report is always printed; the first problem found
// is returned after it.
func Doctor(ctx context.Context, fsys fs.FS, opts DoctorOpts, logger *slog.Logger, stdout, stderr io.Writer) error {
	logger = discardLogger(logger)

	path := configPathOrDefault(opts.ConfigPath)
	cfg, found, err := config.LoadEvent(fsys, path)
	if err != nil {
		return err
	}

	r := DoctorReport{
		ConfigPath:   path,
		ConfigFound:  found,
		Roster:       cfg.Roster,
		LedgerFmt:    cfg.LedgerFormat(),
		Success:      cfg.Ledger.Success,
		Failure:      cfg.Ledger.Failure,
		Snapshot:     cfg.Ledger.Snapshot,
		OutputDir:    cfg.Artifact.OutputDir,
		StateDir:     cfg.StateDir,
		BaseToken:    cfg.BaseToken,
		RetryFailed:  cfg.RetryFailed,
		Sender:       opts.Environ["EMAIL_ADDRESS"],
		SMTPServer:   opts.Environ["SMTP_SERVER"],
		SMTPPort:     opts.Environ["SMTP_PORT"],
		TLSPolicy:    opts.Environ["SMTP_TLS_POLICY"],
		Auth:         opts.Environ["SMTP_AUTH"],
		Password:     strings.TrimSpace(opts.Environ["EMAIL_PASSWORD"]) != "",
		ArtifactKind: cfg.Artifact.Kind,
		Template:     cfg.Artifact.Template,
		Font:         cfg.Artifact.Font,
	}
	if r.TLSPolicy == "" {
		r.TLSPolicy = config.TLSMandatory
	}
	if r.Auth == "" {
		r.Auth = config.AuthAuto
	}

	var problems []error

	// Step 1: SMTP environment
	if _, err := config.LoadEnv(opts.Environ); err != nil {
		problems = append(problems, err)
	}

	// Step 2: Ticket resources
	if cfg.Artifact.Template != "" {
		if _, err := fsys.Stat(cfg.Artifact.Template); err != nil {
			problems = append(problems, errors.WrapWithDetails(errors.EArtifactResource,
				"ticket template not found", err, map[string]string{"path": cfg.Artifact.Template}))
		}
	}
	if cfg.Artifact.Font != "" {
		if _, err := fsys.Stat(cfg.Artifact.Font); err != nil {
			problems = append(problems, errors.WrapWithDetails(errors.EArtifactResource,
				"ticket font not found", err, map[string]string{"path": cfg.Artifact.Font}))
		}
	}

	// Step 3: Roster and ledgers
	st := store.NewStore(fsys, cfg)
	defer func() { _ = st.Close() }()

	if roster, err := st.LoadRoster(); err != nil {
		problems = append(problems, err)
	} else {
		r.Participants = len(roster)
	}
	if ledgers, err := st.LoadLedgers(); err != nil {
		problems = append(problems, err)
	} else {
		r.SuccessEntries = len(ledgers.Success)
		r.FailureEntries = len(ledgers.Failure)
		r.NextToken = core.RunBase(cfg.BaseToken, ledgers.Success, ledgers.Failure)
	}

	writeDoctorReport(stdout, r)

	if len(problems) > 0 {
		for _, p := range problems[1:] {
			logger.Warn("doctor check failed", "error_code", errors.GetCode(p), "error", p)
		}
		_, _ = fmt.Fprintf(stdout, "status: %d problem(s)\n", len(problems))
		return problems[0]
	}
	_, _ = fmt.Fprintln(stdout, "status: ok")
	return nil
}

func writeDoctorReport(w io.Writer, r DoctorReport) {
	_, _ = fmt.Fprintf(w, "config: %s\n", r.ConfigPath)
	_, _ = fmt.Fprintf(w, "config_found: %s\n", boolStr(r.ConfigFound))
	_, _ = fmt.Fprintf(w, "roster: %s\n", r.Roster)
	_, _ = fmt.Fprintf(w, "ledger_format: %s\n", r.LedgerFmt)
	_, _ = fmt.Fprintf(w, "ledger_success: %s\n", r.Success)
	_, _ = fmt.Fprintf(w, "ledger_failure: %s\n", r.Failure)
	_, _ = fmt.Fprintf(w, "snapshot: %s\n", orNone(r.Snapshot))
	_, _ = fmt.Fprintf(w, "output_dir: %s\n", r.OutputDir)
	_, _ = fmt.Fprintf(w, "state_dir: %s\n", r.StateDir)
	_, _ = fmt.Fprintf(w, "base_token: %d\n", r.BaseToken)
	_, _ = fmt.Fprintf(w, "retry_failed: %s\n", boolStr(r.RetryFailed))

	_, _ = fmt.Fprintf(w, "email_address: %s\n", orNone(r.Sender))
	_, _ = fmt.Fprintf(w, "email_password: %s\n", setStr(r.Password))
	_, _ = fmt.Fprintf(w, "smtp_server: %s\n", orNone(r.SMTPServer))
	_, _ = fmt.Fprintf(w, "smtp_port: %s\n", orNone(r.SMTPPort))
	_, _ = fmt.Fprintf(w, "smtp_tls_policy: %s\n", r.TLSPolicy)
	_, _ = fmt.Fprintf(w, "smtp_auth: %s\n", r.Auth)

	_, _ = fmt.Fprintf(w, "artifact_kind: %s\n", r.ArtifactKind)
	_, _ = fmt.Fprintf(w, "template: %s\n", orNone(r.Template))
	_, _ = fmt.Fprintf(w, "font: %s\n", orNone(r.Font))

	_, _ = fmt.Fprintf(w, "participants: %d\n", r.Participants)
	_, _ = fmt.Fprintf(w, "sent: %d\n", r.SuccessEntries)
	_, _ = fmt.Fprintf(w, "failed: %d\n", r.FailureEntries)
	_, _ = fmt.Fprintf(w, "next_token: %s\n", strconv.Itoa(r.NextToken))
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func setStr(b bool) string {
	if b {
		return "set"
	}
	return "unset"
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
