// This code is in Public Domain. Take all the code you want, I'll just write more.
package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/kjk/u"
	"github.com/spf13/cobra"
	"github.com/webforum/forumui/forumapi"
)

const defaultApiBaseUrl = "http://localhost:8080"

var (
	configPath   string
	httpAddr     string
	inProduction bool
	logFilePath  string
)

var (
	config = struct {
		ApiBaseUrl          string
		ApiTimeoutSeconds   int
		CookieAuthKeyHexStr string
		CookieEncrKeyHexStr string
		// user allowed to see /logs
		AdminUser string
		// set when the site is served over https
		SecureCookies bool
	}{}

	logger *ServerLogger
	api    *forumapi.Client

	alwaysLogTime = true
)

func generateKeysMsg() string {
	auth := securecookie.GenerateRandomKey(32)
	encr := securecookie.GenerateRandomKey(32)
	return fmt.Sprintf("CookieAuthKeyHexStr: %s\nCookieEncrKeyHexStr: %s\n", hex.EncodeToString(auth), hex.EncodeToString(encr))
}

func decodeCookieKeys() ([]byte, []byte, error) {
	authKey, err := hex.DecodeString(config.CookieAuthKeyHexStr)
	if err != nil {
		return nil, nil, err
	}
	encrKey, err := hex.DecodeString(config.CookieEncrKeyHexStr)
	if err != nil {
		return nil, nil, err
	}
	if len(authKey) == 0 || len(encrKey) == 0 {
		return nil, nil, errors.New("cookie keys are empty")
	}
	return authKey, encrKey, nil
}

// readConfig reads the configuration file. In development a missing file
// or missing cookie keys are not fatal: defaults and random keys are used.
func readConfig(configFile string) error {
	configFile = u.ExpandTildeInPath(configFile)
	if u.PathExists(configFile) {
		b, err := os.ReadFile(configFile)
		if err != nil {
			return err
		}
		if err = json.Unmarshal(b, &config); err != nil {
			return fmt.Errorf("%s is not valid json: %s", configFile, err)
		}
	} else if inProduction {
		return fmt.Errorf("%s config file doesn't exist", configFile)
	} else {
		logger.Noticef("%s doesn't exist, using defaults", configFile)
	}

	if s := strings.TrimSpace(os.Getenv("FORUM_API_URL")); s != "" {
		config.ApiBaseUrl = s
	}
	if config.ApiBaseUrl == "" {
		if inProduction {
			return errors.New("ApiBaseUrl must be set in production")
		}
		config.ApiBaseUrl = defaultApiBaseUrl
	}

	authKey, encrKey, err := decodeCookieKeys()
	if err != nil {
		fmt.Printf("CookieAuthKeyHexStr and CookieEncrKeyHexStr are invalid or missing in %q\nYou can use the following random values:\n%s", configFile, generateKeysMsg())
		if inProduction {
			return err
		}
		// sessions won't survive a restart, which is fine in development
		authKey = securecookie.GenerateRandomKey(32)
		encrKey = securecookie.GenerateRandomKey(32)
	}
	secureCookie = securecookie.New(authKey, encrKey)
	// verify auth/encr keys are correct
	if _, err = secureCookie.Encode(cookieName, &SecureCookieValue{}); err != nil {
		return fmt.Errorf("cookie keys don't work: %s", err)
	}
	cookieSecure = config.SecureCookies
	return nil
}

func runServer(cmd *cobra.Command, args []string) error {
	if inProduction {
		reloadTemplates = false
		alwaysLogTime = false
	}
	logger = NewServerLogger(256, 256, true)
	if logFilePath != "" {
		logger.SetLogFile(u.ExpandTildeInPath(logFilePath))
		defer logger.Close()
	}

	if err := readConfig(configPath); err != nil {
		return fmt.Errorf("failed reading config file %s: %w", configPath, err)
	}
	timeout := time.Duration(config.ApiTimeoutSeconds) * time.Second
	api = forumapi.NewClient(config.ApiBaseUrl, forumapi.NewHTTPClient(timeout))
	logger.Noticef("using forum API at %s", api.BaseURL())

	srv := &http.Server{
		Addr:              httpAddr,
		Handler:           initHTTPHandlers(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Noticef("Started running on %s", httpAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Notice("Exited")
	return nil
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "forumui",
		Short:         "Web front end for the forum API",
		SilenceUsage:  true,
		RunE:          runServer,
		Args:          cobra.NoArgs,
		SilenceErrors: false,
	}
	flags := rootCmd.Flags()
	flags.StringVar(&configPath, "config", "config.json", "Path to configuration file")
	flags.StringVar(&httpAddr, "addr", ":5010", "HTTP server address")
	flags.BoolVar(&inProduction, "production", false, "are we running in production")
	flags.StringVar(&logFilePath, "log-file", "", "also write logs to this file (rotated)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "genkeys",
		Short: "Print random cookie keys for the config file",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Print(generateKeysMsg())
		},
	})
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
