package api

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"os"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// LoggingTransport wraps an http.RoundTripper to log upload request and
// response details to a file. Multipart request bodies are elided: image
// payloads would bloat the log without telling us anything.
type LoggingTransport struct {
	Transport http.RoundTripper
	logFile   *os.File
	mu        sync.Mutex
	writer    *bufio.Writer
}

var (
	openTransportsMu sync.Mutex
	openTransports   []*LoggingTransport
)

// NewLoggingTransport creates a new LoggingTransport appending to the
// given log file, and registers it for CloseAllLoggingTransports.
func NewLoggingTransport(transport http.RoundTripper, logFilePath string) (*LoggingTransport, error) {
	f, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open API log file %s: %w", logFilePath, err)
	}

	if transport == nil {
		transport = http.DefaultTransport
	}

	t := &LoggingTransport{
		Transport: transport,
		logFile:   f,
		writer:    bufio.NewWriter(f),
	}

	openTransportsMu.Lock()
	openTransports = append(openTransports, t)
	openTransportsMu.Unlock()

	return t, nil
}

// RoundTrip executes a single HTTP transaction, logging details.
func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	startTime := time.Now()

	// Dump the body only for form-encoded requests; multipart bodies carry
	// raw image bytes.
	dumpReqBody := !strings.HasPrefix(req.Header.Get("Content-Type"), "multipart/")
	reqDump, err := httputil.DumpRequestOut(req, dumpReqBody)
	if err != nil {
		log.WithError(err).Error("Failed to dump API request for logging")
		// Proceed with the request anyway
	} else {
		t.writeLog(fmt.Sprintf("--- Request (%s) ---\n%s\n", startTime.Format(time.RFC3339), string(reqDump)))
	}

	resp, err := t.Transport.RoundTrip(req)

	duration := time.Since(startTime)

	if err != nil {
		t.writeLog(fmt.Sprintf("--- Response Error (%s, Duration: %v) ---\n%s\n", time.Now().Format(time.RFC3339), duration, err.Error()))
	} else {
		contentType := resp.Header.Get("Content-Type")
		logBody := strings.HasPrefix(contentType, "application/json")

		if logBody {
			bodyBytes, readErr := io.ReadAll(resp.Body)
			if readErr != nil {
				log.WithError(readErr).Error("Failed to read response body for logging")
				t.writeLog(fmt.Sprintf("--- Response Headers (%s, Duration: %v) ---\nStatus: %s\n(Body read failed)\n", time.Now().Format(time.RFC3339), duration, resp.Status))
			} else {
				// IMPORTANT: Restore the body so the caller can read it.
				resp.Body.Close()
				resp.Body = io.NopCloser(bytes.NewReader(bodyBytes))

				respDumpHeader, dumpErr := httputil.DumpResponse(resp, false)
				if dumpErr != nil {
					log.WithError(dumpErr).Error("Failed to dump response headers for logging")
					t.writeLog(fmt.Sprintf("--- Response (%s, Duration: %v) ---\nStatus: %s\n(Failed to dump headers, body logged below)\n%s\n", time.Now().Format(time.RFC3339), duration, resp.Status, string(bodyBytes)))
				} else {
					t.writeLog(fmt.Sprintf("--- Response Headers (%s, Duration: %v) ---\n%s\n--- Response Body (%s) ---\n%s\n", time.Now().Format(time.RFC3339), duration, string(respDumpHeader), contentType, string(bodyBytes)))
				}
			}
		} else {
			respDump, dumpErr := httputil.DumpResponse(resp, false)
			if dumpErr != nil {
				log.WithError(dumpErr).Error("Failed to dump non-JSON response headers for logging")
				t.writeLog(fmt.Sprintf("--- Response Headers (%s, Duration: %v, Type: %s) ---\nStatus: %s\n(Failed to dump headers)\n", time.Now().Format(time.RFC3339), duration, contentType, resp.Status))
			} else {
				t.writeLog(fmt.Sprintf("--- Response Headers (%s, Duration: %v, Type: %s) ---\n%s\n(Body not logged)\n", time.Now().Format(time.RFC3339), duration, contentType, string(respDump)))
			}
		}
	}

	// Ensure logs are written
	t.writer.Flush()

	return resp, err
}

// writeLog writes a string to the buffered writer.
func (t *LoggingTransport) writeLog(logString string) {
	_, err := t.writer.WriteString(logString + "\n\n")
	if err != nil {
		// Log to stderr if writing to file fails
		fmt.Fprintf(os.Stderr, "Error writing to API log file: %v\nLog message: %s\n", err, logString)
	}
}

// Close flushes the buffer and closes the underlying log file.
func (t *LoggingTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	errFlush := t.writer.Flush()
	errClose := t.logFile.Close()
	if errFlush != nil {
		return fmt.Errorf("failed to flush API log buffer: %w", errFlush)
	}
	return errClose
}

// CloseAllLoggingTransports closes every transport opened through
// NewLoggingTransport. Called once on process exit.
func CloseAllLoggingTransports() {
	openTransportsMu.Lock()
	transports := openTransports
	openTransports = nil
	openTransportsMu.Unlock()

	for _, t := range transports {
		if err := t.Close(); err != nil {
			log.WithError(err).Error("Error closing API log file")
		}
	}
}
