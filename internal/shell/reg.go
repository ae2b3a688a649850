package shell

import "fmt"

// buildReg translates the reg verb. Registry commands are fiddly enough on
// the wire that each subcommand gets its own builder.
func buildReg(cmd *Command) (string, error) {
	switch cmd.Sub {
	case "delete":
		return buildRegDelete(cmd), nil
	case "load":
		return buildRegLoad(cmd), nil
	case "query":
		return buildRegQuery(cmd), nil
	case "set":
		return buildRegSet(cmd)
	case "unload":
		return buildRegUnload(cmd), nil
	default:
		return "", builderErrorf("incorrect reg mode specified")
	}
}

func buildRegDelete(cmd *Command) string {
	if value := cmd.Arg("value"); value != "" {
		return fmt.Sprintf("reg delete %s %s", cmd.Arg("subkey"), value)
	}
	return fmt.Sprintf("reg delete %s", cmd.Arg("subkey"))
}

func buildRegLoad(cmd *Command) string {
	if cmd.Has("troubleshooting") {
		return fmt.Sprintf("reg load %s %s -Troubleshooting", cmd.Arg("filename"), cmd.Arg("subkey"))
	}
	return fmt.Sprintf("reg load %s %s", cmd.Arg("filename"), cmd.Arg("subkey"))
}

func buildRegQuery(cmd *Command) string {
	if value := cmd.Arg("value"); value != "" {
		return fmt.Sprintf("reg query %s %s", cmd.Arg("subkey"), value)
	}
	return fmt.Sprintf("reg query %s", cmd.Arg("subkey"))
}

// buildRegSet requires the value name, type and data either all present or
// all absent. A partial triple would silently set the wrong thing on the
// remote registry, so it is rejected before anything reaches the wire.
func buildRegSet(cmd *Command) (string, error) {
	name := cmd.Flag("value_name")
	valueType := cmd.Flag("value_type")
	data := cmd.Flag("data")

	if name != "" || valueType != "" || data != "" {
		if name == "" || valueType == "" || data == "" {
			return "", builderErrorf("you must specify a value name, type and data together")
		}
		return fmt.Sprintf("reg set %s %s -ValueType=%s -Value=%s",
			cmd.Arg("subkey"), name, valueType, data), nil
	}

	return fmt.Sprintf("reg set %s", cmd.Arg("subkey")), nil
}

func buildRegUnload(cmd *Command) string {
	if cmd.Has("troubleshooting") {
		return fmt.Sprintf("reg unload %s -Troubleshooting", cmd.Arg("subkey"))
	}
	return fmt.Sprintf("reg unload %s", cmd.Arg("subkey"))
}
