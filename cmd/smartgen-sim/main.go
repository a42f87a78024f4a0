// Command smartgen-sim emulates a SmartGen Mini RDS encoder for local
// testing: it accepts TCP connections, parses CMD=VALUE lines and
// answers OK or NO the way the real unit does.
package main

import (
	"bufio"
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/genricoloni/rdsrelay/internal/rtplus"
	"go.uber.org/zap"
)

const textLimit = 64

func main() {
	addr := flag.String("addr", ":5000", "listen address")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	listener, err := net.Listen("tcp", *addr)
	if err != nil {
		logger.Fatal("Failed to listen", zap.String("addr", *addr), zap.Error(err))
	}
	logger.Info("SmartGen simulator listening", zap.String("addr", *addr))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down")
		_ = listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("Accept failed", zap.Error(err))
			continue
		}
		logger.Info("Connection received", zap.String("remote", conn.RemoteAddr().String()))
		go handle(logger, conn)
	}
}

func handle(logger *zap.Logger, conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		response := "NO\r\n"
		if accept(logger, line) {
			response = "OK\r\n"
		}
		if _, err := conn.Write([]byte(response)); err != nil {
			logger.Warn("Write failed", zap.Error(err))
			return
		}
	}
}

// accept applies the real unit's validation rules to one command line
func accept(logger *zap.Logger, line string) bool {
	name, value, found := strings.Cut(line, "=")
	if !found {
		logger.Warn("Malformed line", zap.String("line", line))
		return false
	}

	switch name {
	case "TEXT":
		if len(value) > textLimit {
			logger.Warn("TEXT value too long", zap.Int("length", len(value)))
			return false
		}
		logger.Info("TEXT accepted", zap.String("value", value))
		return true
	case "RT+TAG":
		// The display text is not known here; decode against a buffer
		// long enough for any valid span to check the payload shape.
		if _, err := rtplus.Decode(value, strings.Repeat(" ", 128)); err != nil {
			logger.Warn("RT+TAG payload invalid", zap.String("value", value), zap.Error(err))
			return false
		}
		logger.Info("RT+TAG accepted", zap.String("value", value))
		return true
	default:
		logger.Warn("Unknown command", zap.String("command", name))
		return false
	}
}
