package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/spf13/cobra"

	"github.com/udplab/udd/pkg/config"
	"github.com/udplab/udd/pkg/payload"
	"github.com/udplab/udd/pkg/transport"
)

var cfgFile string

var (
	outWriter io.Writer = os.Stdout
	errWriter io.Writer = os.Stderr
	inReader  io.Reader = os.Stdin

	colorableOut io.Writer = colorable.NewColorableStdout()
)

var rootCmd = &cobra.Command{
	Use:   "udd [HOST:PORT] [PAYLOAD]",
	Short: "UDP datagram debugger with uqtt protocol support",
	Long: `udd sends and receives UDP datagrams for manual protocol testing.

Input is interpreted per --mode: a uqtt protocol command line (mqtt),
a hex byte string (hex), text with backslash escapes (text), or
auto-detected in that order (auto). With a PAYLOAD argument udd sends
one datagram and exits; without one it enters a line-oriented send
loop; --tui starts an interactive session that also prints decoded
inbound datagrams.`,
	Args: cobra.MaximumNArgs(2),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		outWriter = cmd.OutOrStdout()
		errWriter = cmd.ErrOrStderr()
		inReader = cmd.InOrStdin()

		if outWriter != os.Stdout {
			colorableOut = outWriter
		}
	},
	RunE: runRoot,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

var cfg config.Config
var currentTarget *config.Target

var (
	modeFlag       = payload.ModeAuto
	bindFlag       string
	tuiFlag        bool
	waitFlag       time.Duration
	templateFlag   bool
	rawFlag        bool
	decodeMsgPack  bool
	verbose        bool
	targetOverride string
)

var debugLogger = log.New(io.Discard, "", 0)

// msgCounter feeds protocol frame IDs; the first frame gets ID 1.
var msgCounter uint32

func nextMsgID() uint16 {
	return uint16(atomic.AddUint32(&msgCounter, 1))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.udd/config)")
	rootCmd.PersistentFlags().StringVarP(&targetOverride, "target", "t", "", "set a temporary current target profile")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Whether to turn on debug logging")

	rootCmd.Flags().Var(&modeFlag, "mode", "Input interpretation. Possible values: auto, hex, text, mqtt.")
	rootCmd.Flags().StringVar(&bindFlag, "bind", "", "Local address to bind (default 0.0.0.0:0)")
	rootCmd.Flags().BoolVar(&tuiFlag, "tui", false, "Start an interactive session")
	rootCmd.Flags().DurationVarP(&waitFlag, "wait", "w", 0, "Wait this long for a reply after a single-shot send")
	rootCmd.Flags().BoolVar(&templateFlag, "template", false, "Run the payload through the go template engine before encoding")
	rootCmd.Flags().BoolVar(&rawFlag, "raw", false, "Print received datagrams without prettified JSON payloads")
	rootCmd.Flags().BoolVar(&decodeMsgPack, "decode-msgpack", false, "Enable deserializing msgpack publish payloads")

	_ = rootCmd.RegisterFlagCompletionFunc("mode", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "hex", "text", "mqtt"}, cobra.ShellCompDirectiveNoFileComp
	})

	cobra.OnInitialize(onInit)
}

func onInit() {
	var err error
	cfg, err = config.ReadConfig(cfgFile)
	if err != nil {
		errorExit("Invalid config: %v", err)
	}

	cfg.TargetOverride = targetOverride
	currentTarget = cfg.ActiveTarget()

	if verbose {
		debugLogger = log.New(errWriter, "[udd] ", log.Lshortfile|log.LstdFlags)
	}
}

func runRoot(cmd *cobra.Command, args []string) error {
	var target, rawInput string
	singleShot := false
	switch {
	case len(args) > 1:
		target = args[0]
		rawInput = args[1]
		singleShot = true
	case len(args) == 1 && currentTarget != nil && !strings.Contains(args[0], ":"):
		// A single positional that cannot be a host:port is the
		// payload; the active profile supplies the target.
		rawInput = args[0]
		singleShot = true
	case len(args) == 1:
		target = args[0]
	}

	mode := modeFlag
	bind := bindFlag

	// Flags and positionals override the active profile.
	if currentTarget != nil {
		if target == "" {
			target = currentTarget.Addr
		}
		if bind == "" {
			bind = currentTarget.Bind
		}
		if !cmd.Flags().Changed("mode") && currentTarget.Mode != "" {
			if err := mode.Set(currentTarget.Mode); err != nil {
				return fmt.Errorf("profile %q: %w", currentTarget.Name, err)
			}
		}
	}
	if target == "" {
		return errors.New("no target: pass HOST:PORT or configure a target profile")
	}

	sess, err := transport.Dial(bind, target)
	if err != nil {
		return err
	}
	defer sess.Close()
	debugLogger.Printf("bound %v, peer %v", sess.LocalAddr(), sess.RemoteAddr())

	enc := payload.Encoder{NextID: nextMsgID}

	switch {
	case tuiFlag:
		return runInteractive(cmd.Context(), sess, enc, mode)
	case singleShot:
		return sendOnce(sess, enc, mode, rawInput)
	default:
		return runREPL(sess, enc)
	}
}

func errorExit(format string, a ...interface{}) {
	fmt.Fprintf(errWriter, format+"\n", a...)
	os.Exit(1)
}
