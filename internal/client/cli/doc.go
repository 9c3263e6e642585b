// Package cli provides the interactive MediGenie command-line client.
//
// App wires the application services to a line-oriented REPL. The user
// registers a profile once, records follow-up logs (each commit refreshes
// the health summary and the digital twin), and talks to the advisory
// agents: chat, triage, care pathway, drug interactions, lab reports,
// medical search and clinic lookup. Logs and the twin can be exported to a
// spreadsheet or a PDF report.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
