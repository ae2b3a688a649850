package shell

import (
	"fmt"
	"strings"
)

// LiteralDelimiter wraps free-text values (raw scripts, command lines) on
// the wire so that the remote protocol treats them as a single literal
// block regardless of embedded spaces or quotes.
const LiteralDelimiter = "```"

// CommandBuilderError indicates that a structurally valid command could not
// be translated into the remote protocol's syntax, e.g. when cross-field
// constraints that only the translator knows about are violated.
type CommandBuilderError struct {
	msg string
}

func (e *CommandBuilderError) Error() string {
	return e.msg
}

func builderErrorf(format string, args ...interface{}) error {
	return &CommandBuilderError{msg: fmt.Sprintf(format, args...)}
}

func literal(value string) string {
	return LiteralDelimiter + value + LiteralDelimiter
}

// Build translates a parsed command into the exact string sent to the
// remote hosts. It is pure: no I/O, no session state. Verbs that are
// serviced locally (cloud_scripts, put_files) or that use dedicated
// transfer endpoints (get, get_status, download) have no remote syntax and
// return an error if they reach the translator.
func Build(cmd *Command) (string, error) {
	switch cmd.Verb {
	case VerbCat:
		if cmd.Has("show_hex") {
			return fmt.Sprintf("cat %s -ShowHex", cmd.Arg("file")), nil
		}
		return fmt.Sprintf("cat %s", cmd.Arg("file")), nil

	case VerbCd:
		return fmt.Sprintf("cd %s", cmd.Arg("directory")), nil

	case VerbCp:
		return fmt.Sprintf("cp %s %s", cmd.Arg("source"), cmd.Arg("destination")), nil

	case VerbCsrutil:
		return "csrutil", nil

	case VerbCswindiag:
		return "cswindiag", nil

	case VerbEncrypt:
		if key := cmd.Arg("key"); key != "" {
			return fmt.Sprintf("encrypt %s %s", cmd.Arg("path"), key), nil
		}
		return fmt.Sprintf("encrypt %s", cmd.Arg("path")), nil

	case VerbEnv:
		return "env", nil

	case VerbEventlog:
		return buildEventlog(cmd)

	case VerbFilehash:
		return fmt.Sprintf("filehash %s", cmd.Arg("file")), nil

	case VerbGetsid:
		return "getsid", nil

	case VerbIfconfig:
		return "ifconfig", nil

	case VerbIpconfig:
		return "ipconfig", nil

	case VerbKill:
		return fmt.Sprintf("kill %s", cmd.Arg("pid")), nil

	case VerbLs:
		return buildLs(cmd), nil

	case VerbMap:
		return fmt.Sprintf("map %s %s %s %s",
			cmd.Arg("drive_letter"), cmd.Arg("network_share"),
			cmd.Arg("username"), cmd.Arg("password")), nil

	case VerbMemdump:
		if filename := cmd.Arg("filename"); filename != "" {
			return fmt.Sprintf("memdump %s %s", cmd.Arg("pid"), filename), nil
		}
		return fmt.Sprintf("memdump %s", cmd.Arg("pid")), nil

	case VerbMkdir:
		return fmt.Sprintf("mkdir %s", cmd.Arg("directory")), nil

	case VerbMount:
		return buildMount(cmd), nil

	case VerbMv:
		return fmt.Sprintf("mv %s %s", cmd.Arg("source"), cmd.Arg("destination")), nil

	case VerbNetstat:
		if cmd.Has("routing_info") {
			return "netstat -nr", nil
		}
		return "netstat", nil

	case VerbPs:
		return "ps", nil

	case VerbPut:
		return fmt.Sprintf("put %s", cmd.Arg("file")), nil

	case VerbPutAndRun:
		return fmt.Sprintf("put-and-run %s", cmd.Arg("file")), nil

	case VerbReg:
		return buildReg(cmd)

	case VerbRestart:
		return "restart -Confirm", nil

	case VerbRm:
		if cmd.Has("force") {
			return fmt.Sprintf("rm %s -Force", cmd.Arg("path")), nil
		}
		return fmt.Sprintf("rm %s", cmd.Arg("path")), nil

	case VerbRun:
		return buildRun(cmd), nil

	case VerbRunscript:
		return buildRunscript(cmd)

	case VerbShutdown:
		return "shutdown -Confirm", nil

	case VerbTar:
		return buildTar(cmd), nil

	case VerbUmount:
		if cmd.Has("force") {
			return fmt.Sprintf("umount %s -Force", cmd.Arg("filesystem")), nil
		}
		return fmt.Sprintf("umount %s", cmd.Arg("filesystem")), nil

	case VerbUnmap:
		return fmt.Sprintf("unmap %s", cmd.Arg("drive_letter")), nil

	case VerbUpdate:
		return buildUpdate(cmd)

	case VerbXmemdump:
		if destination := cmd.Arg("destination"); destination != "" {
			return fmt.Sprintf("xmemdump %s %s", cmd.Arg("mode"), destination), nil
		}
		return fmt.Sprintf("xmemdump %s", cmd.Arg("mode")), nil

	case VerbZip:
		return fmt.Sprintf("zip %s %s", cmd.Arg("source"), cmd.Arg("destination")), nil

	case VerbCloudScripts, VerbPutFiles, VerbGet, VerbGetStatus, VerbDownload:
		return "", builderErrorf("%s is handled locally and has no remote command form", cmd.Name)

	default:
		return "", builderErrorf("no translation exists for command %q", cmd.Name)
	}
}

func buildEventlog(cmd *Command) (string, error) {
	switch cmd.Sub {
	case "backup":
		return fmt.Sprintf("eventlog backup %s %s", cmd.Arg("name"), cmd.Arg("filename")), nil
	case "export":
		return fmt.Sprintf("eventlog export %s %s", cmd.Arg("name"), cmd.Arg("filename")), nil
	case "list":
		return "eventlog list", nil
	case "view":
		command := fmt.Sprintf("eventlog view %s", cmd.Arg("name"))
		if count := cmd.Arg("count"); count != "" {
			command = fmt.Sprintf("%s %s", command, count)
		}
		if source := cmd.Arg("source_name"); source != "" {
			command = fmt.Sprintf("%s %s", command, source)
		}
		return command, nil
	default:
		return "", builderErrorf("incorrect eventlog mode specified")
	}
}

func buildLs(cmd *Command) string {
	command := fmt.Sprintf("ls %s", cmd.Arg("directory"))
	if cmd.Has("long") {
		command += " -l"
	}
	if cmd.Has("follow_symlinks") {
		command += " -L"
	}
	if cmd.Has("recurse") {
		command += " -R"
	}
	if cmd.Has("time_modified") {
		command += " -T"
	}
	return command
}

func buildMount(cmd *Command) string {
	source := cmd.Arg("source")
	if source == "" {
		// With no arguments the remote mount lists mounted filesystems.
		return "mount"
	}
	command := fmt.Sprintf("mount %s %s", source, cmd.Arg("mount_point"))
	if fsType := cmd.Flag("filesystem_type"); fsType != "" {
		command = fmt.Sprintf("%s -t=%s", command, fsType)
	}
	if options := cmd.Flag("mount_options"); options != "" {
		command = fmt.Sprintf("%s -o=%s", command, options)
	}
	return command
}

func buildRun(cmd *Command) string {
	command := fmt.Sprintf(`run "%s"`, cmd.Arg("executable"))
	if args := cmd.Flag("command_line"); args != "" {
		command = fmt.Sprintf("%s -CommandLine=%s", command, literal(args))
	}
	if cmd.Has("wait") {
		command += " -Wait"
	}
	return command
}

func buildRunscript(cmd *Command) (string, error) {
	var command string
	switch {
	case cmd.Has("cloud_file"):
		command = fmt.Sprintf(`runscript -CloudFile="%s"`, cmd.Flag("cloud_file"))
	case cmd.Has("host_path"):
		command = fmt.Sprintf(`runscript -HostPath="%s"`, cmd.Flag("host_path"))
	case cmd.Has("raw"):
		command = fmt.Sprintf("runscript -Raw=%s", literal(cmd.Flag("raw")))
	case cmd.Has("workstation_path"):
		// The REPL reads the local file and rewrites it as a raw script
		// before translation; reaching here means that step was skipped.
		return "", builderErrorf("a workstation script must be loaded before translation")
	default:
		return "", builderErrorf("runscript requires a script source")
	}

	if args := cmd.Flag("command_line"); args != "" {
		command = fmt.Sprintf("%s -CommandLine=%s", command, literal(args))
	}
	if timeout := cmd.Flag("script_timeout"); timeout != "" {
		command = fmt.Sprintf("%s -Timeout=%s", command, timeout)
	}
	return command, nil
}

func buildTar(cmd *Command) string {
	mode := "-u"
	if cmd.Has("create") {
		mode = "-c"
	}

	command := fmt.Sprintf("tar -f=%s %s %s", cmd.Flag("filename"), mode, cmd.Arg("source"))

	var compression string
	switch {
	case cmd.Has("auto"):
		compression = "-a"
	case cmd.Has("gzip"):
		compression = "-z"
	case cmd.Has("bzip2"):
		compression = "-j"
	case cmd.Has("lzma"):
		compression = "-J"
	}
	if compression != "" {
		command = fmt.Sprintf("%s %s", command, compression)
	}
	return command
}

func buildUpdate(cmd *Command) (string, error) {
	switch cmd.Sub {
	case "history":
		return "update history", nil
	case "install":
		return fmt.Sprintf("update install %s", cmd.Arg("kb")), nil
	case "list":
		return "update list", nil
	case "query":
		return fmt.Sprintf("update query %s", cmd.Arg("kb")), nil
	default:
		return "", builderErrorf("incorrect update mode specified")
	}
}

// ExtractLiteral returns the content of the first literal block in a built
// command string, for callers that need to recover free-text values.
func ExtractLiteral(command string) (string, bool) {
	start := strings.Index(command, LiteralDelimiter)
	if start < 0 {
		return "", false
	}
	rest := command[start+len(LiteralDelimiter):]
	end := strings.Index(rest, LiteralDelimiter)
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}
