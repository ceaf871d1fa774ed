package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/themoriarti/ocijail"
	"github.com/themoriarti/ocijail/configs"
)

var execCommand = cli.Command{
	Name:  "exec",
	Usage: "execute the command described by an OCI process fragment",
	Flags: []cli.Flag{
		cli.StringFlag{Name: "process,p", Value: "process.json", Usage: "path to the process fragment"},
		cli.StringFlag{Name: "console-socket", Usage: "path to a local domain socket that receives the pty master"},
		cli.BoolFlag{Name: "detach,d", Usage: "the container is being launched detached"},
		cli.IntFlag{Name: "preserve-fds", Usage: "number of additional descriptors to leave open for the container"},
	},
	Action: func(context *cli.Context) error {
		spec, err := loadProcess(context)
		if err != nil {
			fatal(err)
		}
		if err := launch(spec); err != nil {
			fatal(err)
		}
		return nil
	},
}

func loadProcess(context *cli.Context) (*configs.Process, error) {
	data, err := os.ReadFile(context.String("process"))
	if err != nil {
		return nil, err
	}
	return configs.ParseProcess(data,
		context.String("console-socket"),
		context.Bool("detach"),
		context.Int("preserve-fds"))
}

// launch runs the full sequence; on success FinalizeAndExec replaces the
// process image and this function never returns.
func launch(spec *configs.Process) error {
	if err := ocijail.ResolveExecutable(spec); err != nil {
		return err
	}
	logrus.Debugf("resolved %q, preparing streams", spec.Args[0])
	stdin, stdout, stderr, err := ocijail.PrepareStreams(spec)
	if err != nil {
		return err
	}
	return ocijail.FinalizeAndExec(spec, stdin, stdout, stderr)
}

func fatal(err error) {
	logrus.Error(err)
	os.Exit(1)
}
