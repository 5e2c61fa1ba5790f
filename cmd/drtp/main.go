// The drtp command transfers a single file over UDP, acting either as the
// sending client or the receiving server.
package main

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/drtp-go/drtp"
	"github.com/drtp-go/drtp/internal/utils"
	"github.com/drtp-go/drtp/logging"
	"github.com/drtp-go/drtp/metrics"
	"github.com/drtp-go/drtp/qlog"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// the server writes the reassembled file to a fixed path
const outputPath = "received_file"

func main() {
	var (
		serverMode  bool
		clientMode  bool
		ip          string
		port        int
		file        string
		window      int
		discard     uint
		metricsAddr string
	)
	flag.BoolVar(&serverMode, "server", false, "enable server mode")
	flag.BoolVar(&serverMode, "s", false, "enable server mode (shorthand)")
	flag.BoolVar(&clientMode, "client", false, "enable client mode")
	flag.BoolVar(&clientMode, "c", false, "enable client mode (shorthand)")
	flag.StringVar(&ip, "ip", "127.0.0.1", "IP address, in dotted decimal format")
	flag.StringVar(&ip, "i", "127.0.0.1", "IP address (shorthand)")
	flag.IntVar(&port, "port", 8088, "port number, in the range [1024, 65535]")
	flag.IntVar(&port, "p", 8088, "port number (shorthand)")
	flag.StringVar(&file, "file", "", "file to transfer (client mode)")
	flag.StringVar(&file, "f", "", "file to transfer (shorthand)")
	flag.IntVar(&window, "window", 3, "sliding window size")
	flag.IntVar(&window, "w", 3, "sliding window size (shorthand)")
	flag.UintVar(&discard, "discard", 0, "drop the first packet with this sequence number once, to test retransmission (server mode)")
	flag.UintVar(&discard, "d", 0, "drop a sequence number once (shorthand)")
	flag.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	flag.Parse()

	if os.Getenv("DRTP_LOG_LEVEL") == "" {
		utils.DefaultLogger.SetLogLevel(utils.LogLevelInfo)
	}
	utils.DefaultLogger.SetLogTimeFormat("15:04:05.000")

	if serverMode == clientMode {
		fmt.Fprintln(os.Stderr, "please specify either server (-s) or client (-c) mode")
		os.Exit(1)
	}
	if port < 1024 || port > 65535 {
		fmt.Fprintln(os.Stderr, "port number must be in the range [1024, 65535]")
		os.Exit(1)
	}
	addr := net.ParseIP(ip)
	if addr == nil {
		fmt.Fprintf(os.Stderr, "invalid IP address: %s\n", ip)
		os.Exit(1)
	}
	if clientMode && file == "" {
		fmt.Fprintln(os.Stderr, "please specify the file to transmit (-f)")
		os.Exit(1)
	}
	if discard > 0 && !serverMode {
		fmt.Fprintln(os.Stderr, "the discard hook (-d) only applies to server mode")
		os.Exit(1)
	}

	if metricsAddr != "" {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(metricsAddr, nil); err != nil {
				fmt.Fprintf(os.Stderr, "metrics server: %s\n", err)
			}
		}()
	}

	var err error
	if serverMode {
		err = runServer(addr, port, window, uint16(discard), metricsAddr != "")
	} else {
		err = runClient(addr, port, file, window, metricsAddr != "")
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "connection failed: %s\n", err)
		os.Exit(1)
	}
}

func runServer(ip net.IP, port, window int, discard uint16, withMetrics bool) error {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: ip, Port: port})
	if err != nil {
		return err
	}
	defer conn.Close()

	tracers := []*logging.TransferTracer{}
	if t := qlog.DefaultTracer(logging.PerspectiveServer); t != nil {
		tracers = append(tracers, t)
	}
	if withMetrics {
		tracers = append(tracers, metrics.NewServerTracer())
	}
	conf := &drtp.Config{
		WindowSize: window,
		Discard:    discard,
		Tracer:     logging.NewMultiplexedTracer(tracers...),
	}
	stats, err := drtp.ReceiveFile(conn, outputPath, conf)
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s: %d bytes in %s (%.2f Mbps)\n",
		outputPath, stats.BytesReceived, stats.Duration.Round(1e6), stats.ThroughputMbps)
	return nil
}

func runClient(ip net.IP, port int, file string, window int, withMetrics bool) error {
	conn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	tracers := []*logging.TransferTracer{}
	if t := qlog.DefaultTracer(logging.PerspectiveClient); t != nil {
		tracers = append(tracers, t)
	}
	if withMetrics {
		tracers = append(tracers, metrics.NewClientTracer())
	}
	conf := &drtp.Config{
		WindowSize: window,
		Tracer:     logging.NewMultiplexedTracer(tracers...),
	}
	return drtp.SendFile(conn, &net.UDPAddr{IP: ip, Port: port}, file, conf)
}
