package main

import (
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/tmreyes/redline/internal/config"
	"github.com/tmreyes/redline/internal/draft"
	"github.com/tmreyes/redline/internal/errors"
	"github.com/tmreyes/redline/internal/intake"
	"github.com/tmreyes/redline/internal/ops"
	"github.com/tmreyes/redline/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config, gen draft.Generator) *cli.App {
	app := &cli.App{
		Name:    "redline",
		Usage:   "Privacy-preserving agreement drafting and review",
		Version: Version,
		Commands: []*cli.Command{
			serveCmd(db, cfg, gen),
			submitCmd(db, gen),
			statusCmd(db),
			clausesCmd(db, cfg),
			annotateCmd(db, cfg, gen),
			explainCmd(db, cfg, gen),
			documentCmd(db, cfg),
			jurisdictionsCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// serveCmd creates the serve command.
func serveCmd(db *sql.DB, cfg *config.Config, gen draft.Generator) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8321, Usage: "Listen port"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(db, cfg, gen, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
		},
	}
}

// submitCmd creates the submit command.
func submitCmd(db *sql.DB, gen draft.Generator) *cli.Command {
	return &cli.Command{
		Name:  "submit",
		Usage: "Submit an intake record and run the drafting pipeline (reads JSON from stdin)",
		Action: func(c *cli.Context) error {
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("the intake record must be piped via stdin as JSON"))
			}

			data, err := readStdin()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}

			var rec intake.Record
			dec := json.NewDecoder(strings.NewReader(data))
			dec.DisallowUnknownFields()
			if err := dec.Decode(&rec); err != nil {
				return outputError(errors.NewInvalidRequest("stdin must be an intake record: " + err.Error()))
			}

			output, err := ops.Submit(c.Context, db, gen, rand.Reader, ops.SubmitInput{Record: &rec})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// statusCmd creates the status command.
func statusCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "Show a submission's pipeline status",
		ArgsUsage: "<submission-id>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("a submission ID is required"))
			}

			output, err := ops.Status(db, c.Args().First())
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// clausesCmd creates the clauses command.
func clausesCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "clauses",
		Usage:     "List a submission's clauses for review",
		ArgsUsage: "<submission-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "as", Usage: "Act as this verified identity (defaults to operator_email from config)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("a submission ID is required"))
			}

			output, err := ops.FetchClauses(db, ops.FetchClausesInput{
				SubmissionID: c.Args().First(),
				CallerEmail:  callerIdentity(c, cfg),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// annotateCmd creates the annotate command.
func annotateCmd(db *sql.DB, cfg *config.Config, gen draft.Generator) *cli.Command {
	return &cli.Command{
		Name:      "annotate",
		Usage:     "Attach a comment, question, or flag to a clause",
		ArgsUsage: "<clause-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Value: "comment", Usage: "Annotation kind: comment|question|flag"},
			&cli.StringFlag{Name: "body", Aliases: []string{"b"}, Usage: "Annotation text (or pipe via stdin)"},
			&cli.StringFlag{Name: "as", Usage: "Act as this verified identity (defaults to operator_email from config)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("a clause ID is required"))
			}

			body := c.String("body")
			if body == "" && stdinHasData() {
				text, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				body = text
			}

			output, err := ops.Annotate(c.Context, db, gen, ops.AnnotateInput{
				ClauseID:    c.Args().First(),
				CallerEmail: callerIdentity(c, cfg),
				Kind:        c.String("kind"),
				Body:        body,
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// explainCmd creates the explain command.
func explainCmd(db *sql.DB, cfg *config.Config, gen draft.Generator) *cli.Command {
	return &cli.Command{
		Name:      "explain",
		Usage:     "Show a plain-language explanation of a clause",
		ArgsUsage: "<clause-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "as", Usage: "Act as this verified identity (defaults to operator_email from config)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("a clause ID is required"))
			}

			output, err := ops.Explain(c.Context, db, gen, ops.ExplainInput{
				ClauseID:    c.Args().First(),
				CallerEmail: callerIdentity(c, cfg),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// documentCmd creates the document command.
func documentCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "document",
		Usage:     "Print the assembled agreement as markdown",
		ArgsUsage: "<submission-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "as", Usage: "Act as this verified identity (defaults to operator_email from config)"},
			&cli.BoolFlag{Name: "json", Usage: "Emit the full JSON envelope instead of raw markdown"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("a submission ID is required"))
			}

			output, err := ops.AssembleDocument(db, ops.DocumentInput{
				SubmissionID: c.Args().First(),
				CallerEmail:  callerIdentity(c, cfg),
			})
			if err != nil {
				return outputError(err)
			}

			if c.Bool("json") {
				return outputJSON(output)
			}
			fmt.Println(output.Markdown)
			return nil
		},
	}
}

// jurisdictionsCmd creates the jurisdictions command.
func jurisdictionsCmd() *cli.Command {
	return &cli.Command{
		Name:  "jurisdictions",
		Usage: "List jurisdictions with an embedded rule set",
		Action: func(c *cli.Context) error {
			return outputJSON(map[string][]string{"jurisdictions": draft.SupportedJurisdictions()})
		},
	}
}

// callerIdentity resolves the acting identity for review commands.
func callerIdentity(c *cli.Context, cfg *config.Config) string {
	if as := c.String("as"); as != "" {
		return as
	}
	if cfg != nil {
		return cfg.OperatorEmail
	}
	return ""
}

// outputJSON formats output as indented JSON for CLI.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if rErr, ok := err.(*errors.RedlineError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", rErr.Code, rErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
