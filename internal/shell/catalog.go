package shell

import (
	"sort"
)

// Verb identifies one of the commands the shell can dispatch. The set is
// closed: the translator switches over every member, and adding a verb
// without a translation arm fails the exhaustiveness test.
type Verb int

const (
	VerbCat Verb = iota
	VerbCd
	VerbCloudScripts
	VerbCp
	VerbCsrutil
	VerbCswindiag
	VerbDownload
	VerbEncrypt
	VerbEnv
	VerbEventlog
	VerbFilehash
	VerbGet
	VerbGetStatus
	VerbGetsid
	VerbIfconfig
	VerbIpconfig
	VerbKill
	VerbLs
	VerbMap
	VerbMemdump
	VerbMkdir
	VerbMount
	VerbMv
	VerbNetstat
	VerbPs
	VerbPut
	VerbPutAndRun
	VerbPutFiles
	VerbReg
	VerbRestart
	VerbRm
	VerbRun
	VerbRunscript
	VerbShutdown
	VerbTar
	VerbUmount
	VerbUnmap
	VerbUpdate
	VerbXmemdump
	VerbZip
)

// PositionalSpec describes one positional argument of a verb.
type PositionalSpec struct {
	Name     string
	Help     string
	Required bool
	Default  string
	Int      bool
	Lower    bool
	OneOf    []string
	Choices  *ChoiceSet
}

// FlagSpec describes one named argument of a verb. Forms lists every
// spelling the user may type (e.g. "-b" and "--ShowHex"); Key is the
// canonical name the translator reads.
type FlagSpec struct {
	Key        string
	Forms      []string
	Help       string
	TakesValue bool
	Required   bool
	Int        bool
	Upper      bool
	Default    string
	OneOf      []string
	Choices    *ChoiceSet
}

// Grammar is the full argument specification for a verb, or for one
// subcommand of a verb that has them (eventlog, reg, update, mount).
type Grammar struct {
	Verb        Verb
	Name        string
	Help        string
	Positionals []PositionalSpec
	Flags       []FlagSpec
	// OneRequired groups list flag keys of which exactly one must be given.
	OneRequired [][]string
	// Exclusive groups list flag keys of which at most one may be given.
	Exclusive [][]string
	// Sub maps subcommand names to their grammars. When non-nil the first
	// token after the verb must name a subcommand.
	Sub map[string]*Grammar
	// Check runs cross-field validation after structural parsing.
	Check func(*Command) error
}

// Catalog holds the grammar for every verb plus the runtime choice sets
// that script and put-file names are loaded into.
type Catalog struct {
	grammars map[string]*Grammar
	Scripts  *ChoiceSet
	PutFiles *ChoiceSet
}

// Lookup returns the grammar for a verb name.
func (c *Catalog) Lookup(name string) (*Grammar, bool) {
	g, ok := c.grammars[name]
	return g, ok
}

// Verbs returns every verb name in sorted order, for help and completion.
func (c *Catalog) Verbs() []string {
	names := make([]string, 0, len(c.grammars))
	for name := range c.grammars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewCatalog builds the verb catalog. The returned Scripts and PutFiles
// choice sets start empty and are populated once the cloud inventories have
// been fetched; an empty set accepts any value so that a failed inventory
// load never locks the user out of a verb.
func NewCatalog() *Catalog {
	scripts := NewChoiceSet()
	putFiles := NewChoiceSet()

	grammars := map[string]*Grammar{
		"cat": {
			Verb: VerbCat,
			Help: "Read a file from disk and display as ASCII or hex",
			Positionals: []PositionalSpec{
				{Name: "file", Help: "File to read the contents of", Required: true},
			},
			Flags: []FlagSpec{
				{Key: "show_hex", Forms: []string{"-b", "--ShowHex"}, Help: "Show the results in hexadecimal byte format instead of ASCII"},
			},
		},
		"cd": {
			Verb: VerbCd,
			Help: "Change the current working directory",
			Positionals: []PositionalSpec{
				{Name: "directory", Help: "Directory to change to", Required: true},
			},
		},
		"cloud_scripts": {
			Verb: VerbCloudScripts,
			Help: "List scripts saved in the cloud; run them with runscript -CloudFile",
			Positionals: []PositionalSpec{
				{Name: "script_name", Help: "Only show information about a specific script", Choices: scripts},
			},
			Flags: []FlagSpec{
				{Key: "show_content", Forms: []string{"-s", "--show-content"}, Help: "Show the content of each script on-screen"},
			},
		},
		"cp": {
			Verb: VerbCp,
			Help: "Copy a file or directory",
			Positionals: []PositionalSpec{
				{Name: "source", Help: "Source file or directory", Required: true},
				{Name: "destination", Help: "Destination file or directory", Required: true},
			},
		},
		"csrutil": {
			Verb: VerbCsrutil,
			Help: "[macOS] Display the System Integrity Protection status",
		},
		"cswindiag": {
			Verb: VerbCswindiag,
			Help: "[Windows] Run the sensor diagnostic tool",
		},
		"download": {
			Verb: VerbDownload,
			Help: "Download files retrieved via the get command",
			Positionals: []PositionalSpec{
				{Name: "destination", Help: "Local directory to download files to", Required: true},
			},
			Flags: []FlagSpec{
				{Key: "batch_get_req_id", Forms: []string{"-b", "--batch-get-req-id"}, Help: "Batch request ID (defaults to the most recent get command)", TakesValue: true},
				{Key: "extract", Forms: []string{"-e", "--extract"}, Help: "Extract the downloaded 7z archive, leaving only the retrieved file"},
			},
		},
		"encrypt": {
			Verb: VerbEncrypt,
			Help: "Encrypt a file with AES-256",
			Positionals: []PositionalSpec{
				{Name: "path", Help: "File to encrypt", Required: true},
				{Name: "key", Help: "Base64 encoded encryption key (optional)"},
			},
		},
		"env": {
			Verb: VerbEnv,
			Help: "Get environment variables for all scopes",
		},
		"eventlog": {
			Verb: VerbEventlog,
			Help: "[Windows] Inspect event logs. Subcommands: backup, export, list, view",
			Sub: map[string]*Grammar{
				"backup": {
					Verb: VerbEventlog,
					Help: "Back up the specified event log to a file (.evtx) on disk",
					Positionals: []PositionalSpec{
						{Name: "name", Help: "Name of the event log (e.g. Application, System)", Required: true},
						{Name: "filename", Help: "Target file on disk", Required: true},
					},
				},
				"export": {
					Verb: VerbEventlog,
					Help: "Export the specified event log to a file (.csv) on disk",
					Positionals: []PositionalSpec{
						{Name: "name", Help: "Name of the event log (e.g. Application, System)", Required: true},
						{Name: "filename", Help: "Target file on disk", Required: true},
					},
				},
				"list": {
					Verb: VerbEventlog,
					Help: "Show available event log sources",
				},
				"view": {
					Verb: VerbEventlog,
					Help: "View the most recent N events in a given event log",
					Positionals: []PositionalSpec{
						{Name: "name", Help: "Name of the event log to view", Required: true},
						{Name: "count", Help: "Number of entries to return (default 100, max 500)", Int: true},
						{Name: "source_name", Help: "Name of the event source, e.g. 'WinLogon'"},
					},
					Check: func(cmd *Command) error {
						count := cmd.Arg("count")
						if cmd.Arg("source_name") != "" && (count == "" || count == "0") {
							return parseError("you must specify an event count if you specify a source name")
						}
						return nil
					},
				},
			},
		},
		"filehash": {
			Verb: VerbFilehash,
			Help: "Generate the MD5, SHA1, and SHA256 hashes of a file",
			Positionals: []PositionalSpec{
				{Name: "file", Help: "File to calculate hashes for", Required: true},
			},
		},
		"get": {
			Verb: VerbGet,
			Help: "Upload a file to the cloud from every connected host",
			Positionals: []PositionalSpec{
				{Name: "file", Help: "Path of the file to be uploaded", Required: true},
			},
		},
		"get_status": {
			Verb: VerbGetStatus,
			Help: "Check the status of a batch get command",
			Positionals: []PositionalSpec{
				{Name: "batch_get_req_id", Help: "ID of the batch request to check (defaults to the last one)"},
			},
		},
		"getsid": {
			Verb: VerbGetsid,
			Help: "[Windows/macOS] Enumerate local users and Security Identifiers (SID)",
		},
		"ifconfig": {
			Verb: VerbIfconfig,
			Help: "[Linux/macOS] Show network configuration information",
		},
		"ipconfig": {
			Verb: VerbIpconfig,
			Help: "[Windows] Show network configuration information",
		},
		"kill": {
			Verb: VerbKill,
			Help: "Kill a process",
			Positionals: []PositionalSpec{
				{Name: "pid", Help: "Process ID", Required: true},
			},
		},
		"ls": {
			Verb: VerbLs,
			Help: "Display the contents of the specified path",
			Positionals: []PositionalSpec{
				{Name: "directory", Help: "Directory to list", Default: "."},
			},
			Flags: []FlagSpec{
				{Key: "long", Forms: []string{"-l", "--long"}, Help: "[Linux] List in long format"},
				{Key: "follow_symlinks", Forms: []string{"-L", "--follow-symlinks"}, Help: "[Linux] Follow symbolic links to their targets"},
				{Key: "recurse", Forms: []string{"-R", "--recurse"}, Help: "[Linux] Recursively list subdirectories"},
				{Key: "time_modified", Forms: []string{"-T", "--time-modified"}, Help: "[Linux] Sort by time modified, most recent first"},
			},
		},
		"map": {
			Verb: VerbMap,
			Help: "[Windows] Map an SMB (network) share drive",
			Positionals: []PositionalSpec{
				{Name: "drive_letter", Help: "Drive letter (with or without ':')", Required: true},
				{Name: "network_share", Help: "UNC path of the remote share", Required: true},
				{Name: "username", Help: "User account used for the connection", Required: true},
				{Name: "password", Help: "Password for the user account", Required: true},
			},
		},
		"memdump": {
			Verb: VerbMemdump,
			Help: "[Windows] Dump the memory of a process",
			Positionals: []PositionalSpec{
				{Name: "pid", Help: "Process ID; use the ps command to discover values", Required: true},
				{Name: "filename", Help: "Path for the dump output file"},
			},
		},
		"mkdir": {
			Verb: VerbMkdir,
			Help: "Create a new directory",
			Positionals: []PositionalSpec{
				{Name: "directory", Help: "Name of the new directory", Required: true},
			},
		},
		"mount": {
			Verb: VerbMount,
			Help: "[Linux/macOS] List mounted filesystems, or mount one. The Windows equivalent is map",
			Positionals: []PositionalSpec{
				{Name: "source", Help: "Source filesystem, possibly a URL including credentials"},
				{Name: "mount_point", Help: "Path to the desired mount point"},
			},
			Flags: []FlagSpec{
				{Key: "filesystem_type", Forms: []string{"-t"}, Help: "Filesystem type (e.g. nfs, smbfs)", TakesValue: true},
				{Key: "mount_options", Forms: []string{"-o"}, Help: "Mount options (e.g. nobrowse)", TakesValue: true},
			},
			Check: func(cmd *Command) error {
				if cmd.Arg("source") != "" && cmd.Arg("mount_point") == "" {
					return parseError("a mount point is required when a source filesystem is given")
				}
				return nil
			},
		},
		"mv": {
			Verb: VerbMv,
			Help: "Move a file or directory",
			Positionals: []PositionalSpec{
				{Name: "source", Help: "Source file or directory", Required: true},
				{Name: "destination", Help: "Destination path", Required: true},
			},
		},
		"netstat": {
			Verb: VerbNetstat,
			Help: "Display network statistics and active connections",
			Flags: []FlagSpec{
				{Key: "routing_info", Forms: []string{"-nr"}, Help: "Show routing information"},
			},
		},
		"ps": {
			Verb: VerbPs,
			Help: "Display process information",
		},
		"put": {
			Verb: VerbPut,
			Help: "Put a file from the cloud onto the machine",
			Positionals: []PositionalSpec{
				{Name: "file", Help: "Name of the cloud file to download to the host", Required: true, Choices: putFiles},
			},
		},
		"put_and_run": {
			Verb: VerbPutAndRun,
			Help: "[Windows] Download a file from the cloud and immediately execute it",
			Positionals: []PositionalSpec{
				{Name: "file", Help: "Name of the cloud file to download and execute", Required: true, Choices: putFiles},
			},
		},
		"put_files": {
			Verb: VerbPutFiles,
			Help: "List the put files available in the cloud",
		},
		"reg": {
			Verb: VerbReg,
			Help: "[Windows] Registry manipulation. Subcommands: delete, load, query, set, unload",
			Sub: map[string]*Grammar{
				"delete": {
					Verb: VerbReg,
					Help: "Delete registry subkeys, keys or values",
					Positionals: []PositionalSpec{
						{Name: "subkey", Help: "Registry subkey full path", Required: true},
						{Name: "value", Help: "If provided, delete only this value"},
					},
				},
				"load": {
					Verb: VerbReg,
					Help: "Load a user registry hive from disk",
					Positionals: []PositionalSpec{
						{Name: "filename", Help: "Path to the user registry hive on disk", Required: true},
						{Name: "subkey", Help: "Registry subkey destination (e.g. HKEY_USERS\\temp)", Required: true},
					},
					Flags: []FlagSpec{
						{Key: "troubleshooting", Forms: []string{"-Troubleshooting"}, Help: "Print verbose error messages for escalation to support"},
					},
				},
				"query": {
					Verb: VerbReg,
					Help: "Query a registry subkey or value",
					Positionals: []PositionalSpec{
						{Name: "subkey", Help: "Registry subkey full path", Required: true},
						{Name: "value", Help: "Name of the value to query"},
					},
				},
				"set": {
					Verb: VerbReg,
					Help: "Set registry keys or values",
					Positionals: []PositionalSpec{
						{Name: "subkey", Help: "Registry subkey full path", Required: true},
					},
					Flags: []FlagSpec{
						{Key: "value_name", Forms: []string{"-Value"}, Help: "Name of the value to set", TakesValue: true},
						{Key: "value_type", Forms: []string{"-ValueType"}, Help: "Type of the value", TakesValue: true, Upper: true,
							OneOf: []string{"REG_SZ", "REG_DWORD", "REG_QWORD", "REG_MULTI_SZ", "REG_BINARY"}},
						{Key: "data", Forms: []string{"-ValueData"}, Help: "Contents of the value to insert into the registry", TakesValue: true},
					},
				},
				"unload": {
					Verb: VerbReg,
					Help: "Unload a previously loaded user registry hive",
					Positionals: []PositionalSpec{
						{Name: "subkey", Help: "Registry subkey to unload", Required: true},
					},
					Flags: []FlagSpec{
						{Key: "troubleshooting", Forms: []string{"-Troubleshooting"}, Help: "Print verbose error messages for escalation to support"},
					},
				},
			},
		},
		"restart": {
			Verb: VerbRestart,
			Help: "Restart target systems",
			Flags: []FlagSpec{
				{Key: "confirm", Forms: []string{"-Confirm"}, Help: "Confirms the restart is ok"},
			},
		},
		"rm": {
			Verb: VerbRm,
			Help: "Remove (delete) a file or directory",
			Positionals: []PositionalSpec{
				{Name: "path", Help: "File or directory to delete", Required: true},
			},
			Flags: []FlagSpec{
				{Key: "force", Forms: []string{"-Force"}, Help: "Allow directory and recursive deletes"},
			},
		},
		"run": {
			Verb: VerbRun,
			Help: "Run an executable",
			Positionals: []PositionalSpec{
				{Name: "executable", Help: "The absolute path to the executable", Required: true},
			},
			Flags: []FlagSpec{
				{Key: "command_line", Forms: []string{"-CommandLine"}, Help: "Command line arguments passed to the executable", TakesValue: true},
				{Key: "wait", Forms: []string{"-Wait"}, Help: "Run the program and wait for the result code"},
			},
		},
		"runscript": {
			Verb: VerbRunscript,
			Help: "Run a PowerShell script",
			Flags: []FlagSpec{
				{Key: "cloud_file", Forms: []string{"-CloudFile"}, Help: "Script name in the cloud script store", TakesValue: true, Choices: scripts},
				{Key: "host_path", Forms: []string{"-HostPath"}, Help: "Absolute or relative path of a script on the host machine", TakesValue: true},
				{Key: "raw", Forms: []string{"-Raw"}, Help: "Run a raw script provided as a parameter", TakesValue: true},
				{Key: "workstation_path", Forms: []string{"-WorkstationPath"}, Help: "Run a script from a path on the local workstation", TakesValue: true},
				{Key: "command_line", Forms: []string{"-CommandLine"}, Help: "Command line arguments", TakesValue: true},
				{Key: "script_timeout", Forms: []string{"-Timeout"}, Help: "Timeout for the script in seconds (default 30)", TakesValue: true, Int: true, Default: "30"},
			},
			OneRequired: [][]string{
				{"cloud_file", "host_path", "raw", "workstation_path"},
			},
		},
		"shutdown": {
			Verb: VerbShutdown,
			Help: "Shut down target systems",
			Flags: []FlagSpec{
				{Key: "confirm", Forms: []string{"-Confirm"}, Help: "Confirms the shutdown is ok"},
			},
		},
		"tar": {
			Verb: VerbTar,
			Help: "[Linux] Compress a file or directory into a tar file",
			Positionals: []PositionalSpec{
				{Name: "source", Help: "Source to compress", Required: true},
			},
			Flags: []FlagSpec{
				{Key: "filename", Forms: []string{"-f", "--filename"}, Help: "Target tar filename, relative or absolute", TakesValue: true, Required: true},
				{Key: "create", Forms: []string{"-c", "--create"}, Help: "Create a new archive, overwriting any existing one"},
				{Key: "update", Forms: []string{"-u", "--update"}, Help: "Update an existing archive, or create one if none exists"},
				{Key: "auto", Forms: []string{"-a", "--auto"}, Help: "Automatically decide on a compression method"},
				{Key: "gzip", Forms: []string{"-z", "--gzip"}, Help: "Gzip compression"},
				{Key: "bzip2", Forms: []string{"-j", "--bzip2"}, Help: "Bzip2 compression"},
				{Key: "lzma", Forms: []string{"-J", "--lzma"}, Help: "LZMA/XZ compression"},
			},
			OneRequired: [][]string{
				{"create", "update"},
			},
			Exclusive: [][]string{
				{"auto", "gzip", "bzip2", "lzma"},
			},
		},
		"umount": {
			Verb: VerbUmount,
			Help: "[Linux/macOS] Unmount a filesystem",
			Positionals: []PositionalSpec{
				{Name: "filesystem", Help: "Filesystem to unmount", Required: true},
			},
			Flags: []FlagSpec{
				{Key: "force", Forms: []string{"-f", "--force"}, Help: "Force the unmount"},
			},
		},
		"unmap": {
			Verb: VerbUnmap,
			Help: "[Windows] Unmap an SMB (network) share drive",
			Positionals: []PositionalSpec{
				{Name: "drive_letter", Help: "Drive letter (with or without ':')", Required: true},
			},
		},
		"update": {
			Verb: VerbUpdate,
			Help: "[Windows] Windows Update manipulation. Subcommands: history, install, list, query",
			Sub: map[string]*Grammar{
				"history": {
					Verb: VerbUpdate,
					Help: "List update history via the Windows Update Agent",
				},
				"install": {
					Verb: VerbUpdate,
					Help: "Download and install the available updates matching the input",
					Positionals: []PositionalSpec{
						{Name: "kb", Help: "One or more KB values; quote multiple values, e.g. \"4565351 4569751\"", Required: true},
					},
				},
				"list": {
					Verb: VerbUpdate,
					Help: "List available updates via the Windows Update Agent",
				},
				"query": {
					Verb: VerbUpdate,
					Help: "List available updates matching one or more KBs",
					Positionals: []PositionalSpec{
						{Name: "kb", Help: "One or more KB values; quote multiple values, e.g. \"4565351 4569751\"", Required: true},
					},
				},
			},
		},
		"xmemdump": {
			Verb: VerbXmemdump,
			Help: "Dump the complete or kernel memory of the target systems",
			Positionals: []PositionalSpec{
				{Name: "mode", Help: "complete (full host memory) or kerneldbg (kernel memory with debug symbols)", Required: true, Lower: true,
					OneOf: []string{"complete", "kerneldbg"}},
				{Name: "destination", Help: "Target memdump file name, absolute or relative"},
			},
		},
		"zip": {
			Verb: VerbZip,
			Help: "Compress a file or directory into a zip file",
			Positionals: []PositionalSpec{
				{Name: "source", Help: "Source file or directory", Required: true},
				{Name: "destination", Help: "Target zip file name, relative or absolute", Required: true},
			},
		},
	}

	for name, g := range grammars {
		g.Name = name
		for sub, sg := range g.Sub {
			sg.Name = name + " " + sub
		}
	}

	return &Catalog{
		grammars: grammars,
		Scripts:  scripts,
		PutFiles: putFiles,
	}
}
