package tpcc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	Commands = map[string]bool{
		"init":  true,
		"check": true,
		"stats": true,
		"run":   true,
	}
	OptionPrefixes = []string{"--", "-"}
	OptionList     = []*Option{
		&Option{
			Name:        "host",
			HasArgument: true,
			Property:    PropertyHost,
			Doc:         "server host to connect to",
		},
		&Option{
			Name:        "port",
			HasArgument: true,
			Property:    PropertyPort,
			Doc:         "server port",
		},
		&Option{
			Name:        "db",
			HasArgument: true,
			Property:    PropertyDB,
			Doc:         "use a specified database binding (can also set the \"db\" property)",
		},
		&Option{
			Name:        "scale",
			HasArgument: true,
			Property:    PropertyScaleFactor,
			Doc:         "scale factor (number of warehouses)",
		},
		&Option{
			Name:        "threads",
			HasArgument: true,
			Property:    PropertyThreadCount,
			Doc:         "number of concurrent client threads",
		},
		&Option{
			Name:        "transactions",
			HasArgument: true,
			Property:    PropertyTransactionCount,
			Doc:         "transactions per thread",
		},
		&Option{
			Name:        "rwratio",
			HasArgument: true,
			Property:    PropertyReadWriteRatio,
			Doc:         "read-write ratio (0.0-1.0)",
		},
		&Option{
			Name:        "weights",
			HasArgument: true,
			Property:    PropertyTransactionWeights,
			Doc:         "comma-separated transaction type weights",
		},
		&Option{
			Name:        "seed",
			HasArgument: true,
			Property:    PropertySeed,
			Doc:         "seed for the random generators (empty means clock)",
		},
		&Option{
			Name:        "log",
			HasArgument: true,
			Doc:         "log level (error/warn/info/debug/verbose)",
		},
		&Option{
			Name:        "P",
			HasArgument: true,
			Doc:         "load properties from the given file",
		},
		&Option{
			Name:        "p",
			HasArgument: true,
			Doc:         "specify a property value",
		},
		&Option{
			Name: "h",
			Doc:  "show this help message and exit",
		},
		&Option{
			Name: "help",
			Doc:  "show this help message and exit",
		},
	}
	Options = make(map[string]*Option)

	ProgramName = ""
)

type Option struct {
	Name        string
	HasArgument bool
	// Property is the property key the option value maps to, empty for
	// options handled specially.
	Property string
	Doc      string
}

type Arguments struct {
	Command string
	Properties
}

func Usage() {
	usageFormat := `usage: %s command [options]

Commands:
  init               Create the schema and load the initial data
  check              Run consistency checks on the loaded data
  stats              Show database statistics
  run                Execute the benchmark transaction mix

Options:
  -host host         : server host to connect to
  -port port         : server port
  -db name           : use a specified database binding
  -scale n           : scale factor (number of warehouses)
  -threads n         : number of concurrent client threads
  -transactions n    : transactions per thread
  -rwratio ratio     : read-write ratio (0.0-1.0)
  -weights w,w,w,w,w : weights for NewOrder,Payment,Delivery,OrderStatus,StockLevel
  -seed n            : seed for the random generators
  -log level         : log level (error/warn/info/debug/verbose)
  -P filename        : load properties from the given file
  -p name=value      : specify a property value

positional arguments:
  {init,check,stats,run}  Command to run.

optional arguments:
  -h, --help         show this help message and exit`
	Printf(usageFormat, ProgramName)
}

func init() {
	ProgramName = filepath.Base(os.Args[0])

	for i := 0; i < len(OptionList); i++ {
		o := OptionList[i]
		Options[o.Name] = o
	}
}

func ExitOnError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	fmt.Fprintln(os.Stderr)
	os.Exit(1)
}

func ParseArgs() *Arguments {
	if len(os.Args) <= 1 {
		ExitOnError("no enough argument")
	}

	index := 1
	firstArg := os.Args[index]
	if firstArg == "-h" || firstArg == "--help" {
		Usage()
		os.Exit(0)
	}
	index++

	command := firstArg
	if _, ok := Commands[command]; !ok {
		ExitOnError("unsupported command: %s", command)
	}

	props := NewProperties()
	for i := index; i < len(os.Args); i++ {
		a := os.Args[i]
		for _, p := range OptionPrefixes {
			if strings.HasPrefix(a, p) {
				a = strings.TrimPrefix(a, p)
				break
			}
		}
		option, ok := Options[a]
		if !ok {
			ExitOnError("unknown option: %s", os.Args[i])
		}
		if !option.HasArgument {
			if option.Name == "h" || option.Name == "help" {
				Usage()
				os.Exit(0)
			}
			continue
		}
		i++
		if !(i < len(os.Args)) {
			ExitOnError("missing argument for option: %s", option.Name)
		}
		arg := os.Args[i]
		switch option.Name {
		case "log":
			SetLogLevel(arg)
		case "p":
			// it's a property, should be in `k=v` form
			parts := strings.Split(arg, "=")
			if len(parts) != 2 {
				ExitOnError("invalid property: %s", arg)
			}
			props.Add(parts[0], parts[1])
		case "P":
			propsFromFile, err := LoadProperties(arg)
			if err != nil {
				ExitOnError(err.Error())
			}
			props.Merge(propsFromFile)
		default:
			props.Add(option.Property, arg)
		}
	}
	return &Arguments{
		Command:    command,
		Properties: props,
	}
}

func Main() {
	args := ParseArgs()
	var client Client
	switch args.Command {
	case "init":
		client = NewInit(args.Properties)
	case "check":
		client = NewCheck(args.Properties)
	case "stats":
		client = NewStats(args.Properties)
	case "run":
		client = NewRunner(args.Properties)
	default:
		ExitOnError("invalid command: %s", args.Command)
	}
	if err := client.Main(); err != nil {
		ExitOnError("%s: %s", args.Command, err)
	}
}
