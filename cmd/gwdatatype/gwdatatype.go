package main

import (
	"flag"
	"os"
	"strings"

	"github.com/xiaonanln/gwdatatype/engine/config"
	"github.com/xiaonanln/gwdatatype/engine/gwlog"
	"github.com/xiaonanln/gwdatatype/engine/section"
)

var args struct {
	configFile string
	format     string
	verbose    bool
}

func parseArgs() {
	flag.StringVar(&args.configFile, "configfile", "", "set config file path")
	flag.StringVar(&args.format, "format", "yaml", "document format: yaml, json or msgpack")
	flag.BoolVar(&args.verbose, "v", false, "print debug logs and storage operation stats")
	flag.Usage = usage
	flag.Parse()
}

func usage() {
	showMsg("usage: gwdatatype [flags] <command> [arguments]")
	showMsg("commands:")
	showMsg("  encode <document file|->   document => stream hex")
	showMsg("  decode <hex>               stream hex => document")
	showMsg("  default                    print the default value in both encodings")
	showMsg("  schema [type name]         print MySQL tables and type digest")
	showMsg("  save <id|new> <hex>        save a stream encoded value to storage")
	showMsg("  load <id>                  load a value from storage")
	showMsg("  list                       list IDs in storage")
	flag.PrintDefaults()
}

func main() {
	parseArgs()
	cmdArgs := flag.Args()
	if args.verbose {
		gwlog.SetLevel(gwlog.DebugLevel)
		showMsg("arguments: %s", strings.Join(cmdArgs, " "))
	} else {
		gwlog.SetLevel(gwlog.WarnLevel)
	}
	if args.configFile != "" {
		config.SetConfigFile(args.configFile)
	}

	if len(cmdArgs) == 0 {
		showMsg("no command to execute")
		flag.Usage()
		os.Exit(1)
	}

	format, err := section.ParseFormat(args.format)
	checkErrorOrQuit(err, "bad -format")

	cmd := cmdArgs[0]
	out := os.Stdout
	if cmd == "encode" {
		if len(cmdArgs) != 2 {
			showMsgAndQuit("should specify one document file, or - for stdin")
		}
		err = encode(out, cmdArgs[1], format)
	} else if cmd == "decode" {
		if len(cmdArgs) != 2 {
			showMsgAndQuit("should specify one hex string")
		}
		err = decode(out, cmdArgs[1], format)
	} else if cmd == "default" {
		err = printDefault(out, format)
	} else if cmd == "schema" {
		typeName := ""
		if len(cmdArgs) >= 2 {
			typeName = cmdArgs[1]
		}
		err = printSchema(out, typeName)
	} else if cmd == "save" {
		if len(cmdArgs) != 3 {
			showMsgAndQuit("should specify entity id (or new) and hex string")
		}
		err = save(out, cmdArgs[1], cmdArgs[2])
	} else if cmd == "load" {
		if len(cmdArgs) != 2 {
			showMsgAndQuit("should specify one entity id")
		}
		err = load(out, cmdArgs[1], format)
	} else if cmd == "list" {
		err = list(out)
	} else {
		showMsgAndQuit("unknown command: %s", cmd)
	}
	checkErrorOrQuit(err, cmd+" failed")
}
