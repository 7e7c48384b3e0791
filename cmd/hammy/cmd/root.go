package cmd

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go-hammy-upload/internal/api"
	"go-hammy-upload/internal/config"
	"go-hammy-upload/internal/format"
	"go-hammy-upload/internal/models"
)

// cfgFile holds the path to the config file specified by the user
var cfgFile string

// logApiFlag holds the value of the --log-api flag
var logApiFlag bool

// verboseFlag holds the value of the --verbose flag
var verboseFlag bool

// globalConfig holds the loaded configuration
var globalConfig models.Config

// globalConfigPath is the resolved config file location, used in
// user-facing messages
var globalConfigPath string

// globalConfigCreated is true when this run wrote the placeholder config
var globalConfigCreated bool

// globalHttpTransport holds the globally configured HTTP transport (base or logging-wrapped)
var globalHttpTransport http.RoundTripper

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hammy <file|folder|url>...",
	Short: "Upload images to hamster.is and print share-ready links",
	Long: `Hammy uploads local image files, folders (recursive) or remote image
URLs to hamster.is, optionally resizing oversized images first, and
renders the resulting links in several forum-markup formats to stdout,
the clipboard, or a text file.`,
	Args:              cobra.MinimumNArgs(1),
	SilenceUsage:      true,
	PersistentPreRunE: loadGlobalConfig, // Load config before the command runs
	RunE:              runUpload,
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Configuration file path (default: platform user config dir)")
	rootCmd.PersistentFlags().BoolVar(&logApiFlag, "log-api", false, "Log API requests/responses to api.log (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")

	// Upload flags
	rootCmd.Flags().BoolP("clip", "c", false, "Place the resulting links on the clipboard")
	rootCmd.Flags().BoolP("txt", "t", false, "Append the resulting links to a text file under TxtPath")
	rootCmd.Flags().BoolP("single", "s", false, "Output the links on a single line")
	rootCmd.Flags().IntP("width", "w", 0, "Resize oversized images to this width in pixels")
	rootCmd.Flags().StringP("format", "f", string(format.Plain), "Link format: "+strings.Join(format.Names(), ", "))
	rootCmd.Flags().BoolP("yes", "y", false, "Resize oversized images without prompting")
	rootCmd.Flags().Bool("unique", false, "Append random bytes so the host treats re-uploads as new images")

	// Bind flags to Viper
	viper.BindPFlag("upload.clip", rootCmd.Flags().Lookup("clip"))
	viper.BindPFlag("upload.txt", rootCmd.Flags().Lookup("txt"))
	viper.BindPFlag("upload.single", rootCmd.Flags().Lookup("single"))
	viper.BindPFlag("upload.width", rootCmd.Flags().Lookup("width"))
	viper.BindPFlag("upload.format", rootCmd.Flags().Lookup("format"))
	viper.BindPFlag("upload.yes", rootCmd.Flags().Lookup("yes"))
	viper.BindPFlag("upload.unique", rootCmd.Flags().Lookup("unique"))
}

// loadGlobalConfig resolves the config path, loads or creates the config
// file, applies flag overrides and sets up the global HTTP transport.
func loadGlobalConfig(cmd *cobra.Command, args []string) error {
	if verboseFlag {
		log.SetLevel(log.DebugLevel)
	}

	path := cfgFile
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}
	globalConfigPath = path

	var err error
	globalConfig, globalConfigCreated, err = config.LoadOrCreate(path)
	if err != nil {
		return err
	}

	// Override LogApiRequests if flag was used
	if cmd.Flags().Changed("log-api") {
		globalConfig.LogApiRequests = logApiFlag
		log.Debugf("Overriding LogApiRequests based on --log-api flag: %t", logApiFlag)
	}

	// --- Setup Global HTTP Transport ---
	baseTransport := http.DefaultTransport
	globalHttpTransport = baseTransport
	if globalConfig.LogApiRequests {
		log.Debug("API request logging enabled, wrapping global HTTP transport.")
		loggingTransport, err := api.NewLoggingTransport(baseTransport, "api.log")
		if err != nil {
			log.WithError(err).Error("Failed to initialize API logging transport, logging disabled.")
		} else {
			globalHttpTransport = loggingTransport
		}
	}

	return nil
}
