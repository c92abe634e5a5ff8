package main

// Options are the command line options.
type Options struct {
	LogLevel  string `long:"log-level" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" description:"log level"`
	LogFormat string `long:"log-format" default:"text" choice:"text" choice:"json" description:"log format"`

	Resolve    ResolveCommand    `command:"resolve" description:"resolve a batch file into one mapping table"`
	Bridge     BridgeCommand     `command:"bridge" description:"print the renames between two namespaces"`
	Namespaces NamespacesCommand `command:"namespaces" description:"list the namespaces of a resolved batch"`
	Validate   ValidateCommand   `command:"validate" description:"check a batch file without fetching any source"`
	Presets    PresetsCommand    `command:"presets" description:"list the mapping presets"`
}

// BatchOptions locate a batch file and its sources.
type BatchOptions struct {
	File        string `short:"f" long:"file" required:"true" description:"batch file (.yaml or .hcl)"`
	BaseURL     string `short:"b" long:"base" description:"base URL relative sources resolve against (default: batch file directory)"`
	CacheDir    string `short:"c" long:"cache" description:"cache directory, overrides the batch file"`
	ForceReload bool   `long:"force-reload" description:"ignore cached tables"`
	NoCache     bool   `long:"no-cache" description:"disable the cache"`
	Workers     int    `short:"w" long:"workers" description:"concurrent fetch and parse workers (default: number of CPUs)"`
}

type ResolveCommand struct {
	BatchOptions
	Output string `short:"o" long:"output" description:"table output URL (default: stdout)"`
	JSON   bool   `long:"json" description:"print a JSON summary instead of the table"`
}

type BridgeCommand struct {
	BatchOptions
	Src    string `long:"src" required:"true" description:"source namespace"`
	Dst    string `long:"dst" required:"true" description:"destination namespace"`
	Locals bool   `long:"locals" description:"emit params and locals"`
}

type NamespacesCommand struct {
	BatchOptions
	JSON bool `long:"json" description:"print the namespaces as a JSON array"`
}

type ValidateCommand struct {
	File string `short:"f" long:"file" required:"true" description:"batch file (.yaml or .hcl)"`
}

type PresetsCommand struct{}
