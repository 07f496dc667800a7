package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/slashdevops/deviceid"
	"github.com/slashdevops/deviceid/internal/config"
	"github.com/slashdevops/deviceid/internal/logger"
	"github.com/slashdevops/deviceid/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const applicationName = "deviceid"

var (
	errHashMismatch      = errors.New("device hash does not match")
	errExternalIDMissing = errors.New("external identifier unavailable")
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app carries what the subcommands share once configuration is loaded.
type app struct {
	cfg       *config.Config
	log       zerolog.Logger
	collector *deviceid.Collector
	svc       *deviceid.Service
	stdout    io.Writer
	stderr    io.Writer
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	v := viper.New()
	a := &app{stdout: stdout, stderr: stderr}

	var configFile, envFile string
	var showDiagnostics bool

	root := &cobra.Command{
		Use:           applicationName,
		Short:         "Derive device identifiers from host attributes",
		Long:          "deviceid prints a deterministic device hash derived from the device model, total memory and total disk space.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(envFile); err != nil {
				return a.fail(err)
			}

			cfg, err := config.Load(v, configFile)
			if err != nil {
				return a.fail(err)
			}

			if err := cfg.Validate(); err != nil {
				return a.fail(err)
			}

			return a.setup(cfg)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runHash(cmd.Context(), showDiagnostics)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default ./deviceid.yaml or $HOME/.config/deviceid/deviceid.yaml)")
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flags.String("log-level", "warn", "log level: debug, info, warn, error, off")
	flags.Int("format", 64, "hash length: 32, 64, 128, or 256 characters")
	flags.String("salt", "", "custom salt for application-specific hashes")
	flags.Bool("host-id", false, "fold the operating system host id into the hash")
	flags.Bool("mac", false, "fold physical MAC addresses into the hash")
	flags.String("provider", config.ProviderNone, "external identifier provider: none, random, machine, static")
	flags.String("app-id", "deviceid", "application id protecting the machine provider identifier")
	flags.String("external-id", "", "identifier returned by the static provider")
	flags.Duration("provider-timeout", 10*time.Second, "timeout for the external identifier provider")
	flags.String("disk-path", "", "volume whose total capacity is reported (default system volume)")
	flags.StringP("output", "o", config.OutputText, "output format: text, json, yaml")

	for _, name := range []string{
		"log-level", "format", "salt", "host-id", "mac", "provider", "app-id",
		"external-id", "provider-timeout", "disk-path", "output",
	} {
		_ = v.BindPFlag(strings.ReplaceAll(name, "-", "_"), flags.Lookup(name))
	}

	root.Flags().BoolVar(&showDiagnostics, "diagnostics", false, "show which attributes were read and which degraded")

	root.AddCommand(
		newAttributesCommand(a),
		newExternalCommand(a),
		newPlatformCommand(a),
		newValidateCommand(a),
		newVersionCommand(stdout),
	)

	return root
}

func (a *app) setup(cfg *config.Config) error {
	mode, err := parseFormatMode(cfg.Format)
	if err != nil {
		return a.fail(err)
	}

	a.cfg = cfg
	a.log = logger.New(a.stderr, cfg.LogLevel, os.Getenv("NO_COLOR") != "")
	a.collector = deviceid.NewCollector().
		WithLogger(a.log).
		WithDiskPath(cfg.DiskPath)

	a.svc = deviceid.New(a.collector, newProvider(cfg)).
		WithLogger(a.log).
		WithFormat(mode).
		WithSalt(cfg.Salt).
		WithProviderTimeout(cfg.ProviderTimeout)

	if cfg.HostID {
		a.svc.WithHostID()
	}
	if cfg.MAC {
		a.svc.WithMAC()
	}

	return nil
}

// fail reports err on stderr and returns it so cobra exits non-zero.
func (a *app) fail(err error) error {
	fmt.Fprintf(a.stderr, "Error: %v\n", err)

	return err
}

func newProvider(cfg *config.Config) deviceid.ExternalIDProvider {
	switch cfg.Provider {
	case config.ProviderRandom:
		return &deviceid.RandomProvider{}
	case config.ProviderMachine:
		return deviceid.MachineProvider{AppID: cfg.AppID}
	case config.ProviderStatic:
		return deviceid.StaticProvider(cfg.ExternalID)
	default:
		return nil
	}
}

func parseFormatMode(format int) (deviceid.FormatMode, error) {
	switch format {
	case 32:
		return deviceid.Format32, nil
	case 64:
		return deviceid.Format64, nil
	case 128:
		return deviceid.Format128, nil
	case 256:
		return deviceid.Format256, nil
	default:
		return 0, fmt.Errorf("unsupported format %d; valid values are 32, 64, 128, 256", format)
	}
}

func (a *app) runHash(ctx context.Context, showDiagnostics bool) error {
	hash := a.svc.DeviceHash(ctx)

	out := hashOutput{Hash: hash, Format: a.cfg.Format, Length: len(hash)}
	if showDiagnostics {
		out.Diagnostics = formatDiagnostics(a.svc.Diagnostics())
	}

	return render(a.stdout, a.cfg.Output, out, func(w io.Writer) error {
		fmt.Fprintln(w, hash)
		if showDiagnostics {
			printDiagnostics(a.stderr, a.svc.Diagnostics())
		}

		return nil
	})
}

func newAttributesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "attributes",
		Short: "Print the device attributes the hash is derived from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			attrs := a.collector.Collect(cmd.Context())
			out := attributesOutput{
				Attributes: attrs,
				ModelName:  deviceid.ModelName(attrs.Model),
				Degraded:   attrs.Degraded(),
			}

			return render(a.stdout, a.cfg.Output, out, func(w io.Writer) error {
				fmt.Fprintf(w, "model: %s\n", attrs.Model)
				if out.ModelName != attrs.Model {
					fmt.Fprintf(w, "model name: %s\n", out.ModelName)
				}
				fmt.Fprintf(w, "total memory bytes: %d\n", attrs.TotalMemoryBytes)
				fmt.Fprintf(w, "total disk bytes: %d\n", attrs.TotalDiskBytes)
				if len(out.Degraded) > 0 {
					fmt.Fprintf(w, "degraded: %s\n", strings.Join(out.Degraded, ", "))
				}

				return nil
			})
		},
	}
}

func newExternalCommand(a *app) *cobra.Command {
	var withTrace bool

	cmd := &cobra.Command{
		Use:   "external",
		Short: "Print the external device identifier issued by the configured provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			id := a.svc.ExternalID(ctx)

			out := externalOutput{ExternalID: id, Available: id != deviceid.UnknownExternalID, Provider: a.cfg.Provider}
			if withTrace {
				out.TraceID = a.svc.TraceID(ctx, time.Now())
			}

			if err := render(a.stdout, a.cfg.Output, out, func(w io.Writer) error {
				if !out.Available {
					return nil
				}
				fmt.Fprintln(w, id)
				if withTrace {
					fmt.Fprintln(w, out.TraceID)
				}

				return nil
			}); err != nil {
				return err
			}

			if !out.Available {
				return a.fail(errExternalIDMissing)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&withTrace, "trace", false, "also print a trace id built from the external identifier")

	return cmd
}

func newPlatformCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "platform",
		Short: "Print operating system information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := deviceid.Platform(cmd.Context())

			return render(a.stdout, a.cfg.Output, info, func(w io.Writer) error {
				fmt.Fprintf(w, "%s %s %s (%s)\n", info.OS, info.Name, info.Version, info.Arch)

				return nil
			})
		},
	}
}

func newValidateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <hash>",
		Short: "Check a device hash against the current device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expected := args[0]
			valid := a.svc.Validate(cmd.Context(), expected)

			out := validateOutput{Valid: valid, ExpectedHash: expected}
			if err := render(a.stdout, a.cfg.Output, out, func(w io.Writer) error {
				if valid {
					fmt.Fprintln(w, "valid: device hash matches")
				} else {
					fmt.Fprintln(w, "invalid: device hash does not match")
				}

				return nil
			}); err != nil {
				return err
			}

			if !valid {
				return errHashMismatch
			}

			return nil
		},
	}
}

func newVersionCommand(stdout io.Writer) *cobra.Command {
	var long bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// Version needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(*cobra.Command, []string) {
			if long {
				fmt.Fprintln(stdout, version.Long(applicationName))

				return
			}
			fmt.Fprintln(stdout, version.Short(applicationName))
		},
	}

	cmd.Flags().BoolVar(&long, "long", false, "show detailed version information")

	return cmd
}
