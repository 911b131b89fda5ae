// Command myclaw is the CLI entry point for the sandboxed coding agent
// runtime: it wires config, workspace, provider, tool registry, engine,
// session store, persistence, and the production subscriber set into
// cobra subcommands (run, chat, config, doctor, init, serve).
//
// Grounded on the teacher's cmd/cobra_cli.go root-command construction
// (_teacher_ref/cmd/cobra_cli.go), generalized from its single
// interactive-vs-single-prompt root command into the run/chat/config/
// doctor/init/serve subcommand split SPEC_FULL §4.9 names.
package main

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fatal(err)
	}
}
