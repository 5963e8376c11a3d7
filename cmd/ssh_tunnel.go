package cmd

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EO-DataHub/eodhp-todo-services/internal/appconfig"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh"
)

var tunnelCmd = &cobra.Command{
	Use:   "tunnel",
	Short: "Forward a local port to the database through an SSH bastion",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := commonSetUp()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := StartSSHTunnel(ctx, cfg.Tunnel); err != nil {
			log.Fatal().Err(err).Msg("SSH tunnel failed")
		}
	},
}

func init() {
	rootCmd.AddCommand(tunnelCmd)
}

// SSHClient creates a new SSH client
func SSHClient(config appconfig.TunnelConfig) (*ssh.Client, error) {
	key, err := os.ReadFile(config.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read private key: %w", err)
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("unable to parse private key: %w", err)
	}

	sshConfig := &ssh.ClientConfig{
		User: config.SSHUser,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(signer),
		},
		// Development only; the bastion host key is not pinned
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         5 * time.Second,
	}

	return ssh.Dial("tcp", net.JoinHostPort(config.SSHHost, config.SSHPort), sshConfig)
}

// ForwardTraffic forwards connections accepted on localListener to the
// remote host until the listener is closed.
func ForwardTraffic(localListener net.Listener, client *ssh.Client, config appconfig.TunnelConfig) {
	remoteAddr := net.JoinHostPort(config.RemoteHost, config.RemotePort)
	for {
		localConn, err := localListener.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			log.Debug().Err(err).Msg("Local listener closed")
			return
		}

		remoteConn, err := client.Dial("tcp", remoteAddr)
		if err != nil {
			log.Error().Err(err).Str("remote", remoteAddr).Msg("Failed to connect to remote host")
			localConn.Close()
			continue
		}

		go pipe(localConn, remoteConn)
	}
}

func pipe(a, b net.Conn) {
	defer a.Close()
	defer b.Close()

	go io.Copy(b, a)
	io.Copy(a, b)
}

// StartSSHTunnel opens the tunnel and forwards traffic until ctx is done.
func StartSSHTunnel(ctx context.Context, config appconfig.TunnelConfig) error {
	client, err := SSHClient(config)
	if err != nil {
		return err
	}
	defer client.Close()

	localListener, err := net.Listen("tcp", net.JoinHostPort("localhost", config.LocalPort))
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		localListener.Close()
	}()

	log.Info().
		Str("local", localListener.Addr().String()).
		Str("remote", net.JoinHostPort(config.RemoteHost, config.RemotePort)).
		Msg("SSH tunnel started")

	ForwardTraffic(localListener, client, config)
	return nil
}
