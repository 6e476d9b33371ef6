package main

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort         = "Switch between source checkouts and their build directories"
	MsgSourceShort       = "Get path to source dir"
	MsgBuildShort        = "Get path to build dir"
	MsgCacheLookupShort  = "Get all repositories that start with given prefix"
	MsgUpdateCacheShort  = "Update the source dirs cache"
	MsgCleanupCacheShort = "Remove stale entries from the source dirs cache"
	MsgGenConfigShort    = "Print a sample configuration file"
	MsgCompletionShort   = "Generate shell completion script"

	// Flag descriptions
	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagPretend = "Don't actually modify the cache, only print actions"

	// Failure hint, printed after any fatal diagnostic
	MsgDebugHint = "Run command again with DEVELDIRS_DEBUG env var set to see debug output"
)

// Long messages
const (
	MsgRootLong = `develdirs resolves, for a repository, the build directory that belongs
to a source directory and vice versa, driven by a configured table of
source/build root pairs. It also maintains a small cache mapping
repository names to checkout locations, built by scanning your source
roots for version-control markers.

The resolved path is printed on stdout so it composes with cd:

  cd "$(develdirs build)"
  cd "$(develdirs source llvm)"

See 'develdirs help config' for the configuration file format.`

	MsgSourceLong = `Print the source directory for a repository name, or for the current
working directory when no name is given. Repository names are resolved
through the cache (see update-cache); paths inside a build root are
mapped back to the matching source tree, stripping any configured
build suffix.`

	MsgBuildLong = `Print the build directory for a repository name, or for the current
working directory when no name is given. The configured mapping table
is searched in order, overrides first; build suffixes are tried on
every path segment, so a checkout named llvm is matched by a build
tree named llvm-debug.`

	MsgUpdateCacheLong = `Scan for repositories and record them in the cache, keyed by their
directory basename. With no path argument every configured source
root is scanned. Directories are recognized as repositories by a .git
or .gitrepo marker.`

	MsgCompletionLong = `To load completions:

Bash:
  $ source <(develdirs completion bash)

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc
  $ develdirs completion zsh > "${fpath[1]}/_develdirs"

Fish:
  $ develdirs completion fish | source

PowerShell:
  PS> develdirs completion powershell | Out-String | Invoke-Expression
`
)

// MsgUsageTemplate is the cobra usage template with emphasized headings
const MsgUsageTemplate = `{{boldUpper "Usage:"}}{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

{{boldUpper "Aliases:"}}
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

{{boldUpper "Examples:"}}
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}{{$cmds := .Commands}}{{if eq (len .Groups) 0}}

{{boldUpper "Available Commands:"}}{{range $cmds}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{else}}{{range $group := .Groups}}

{{bold .Title}}{{range $cmds}}{{if (and (eq .GroupID $group.ID) (or .IsAvailableCommand (eq .Name "help")))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{if not .AllChildCommandsHaveGroup}}

{{bold "Additional Commands:"}}{{range $cmds}}{{if (and (eq .GroupID "") (or .IsAvailableCommand (eq .Name "help")))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

{{boldUpper "Flags:"}}
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

{{boldUpper "Global Flags:"}}
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableSubCommands}}

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
