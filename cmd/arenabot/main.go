// Command arenabot drives simulated players against a running arena
// server for soak and load testing. Each bot dials the WebSocket
// endpoint, joins, and plays a random walk of move/shoot/explode
// traffic until the run ends.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/urfave/cli/v3"

	"github.com/nakatani/tankarena/game/state"
	transport "github.com/nakatani/tankarena/transport/websocket"
)

func main() {
	cmd := &cli.Command{
		Name:  "arenabot",
		Usage: "simulate players against a tank arena server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "server",
				Value: "ws://localhost:8080/ws",
				Usage: "WebSocket endpoint of the arena server",
			},
			&cli.StringFlag{
				Name:  "room",
				Usage: "room id to join (default: the default room)",
			},
			&cli.IntFlag{
				Name:  "bots",
				Value: 4,
				Usage: "number of concurrent simulated players",
			},
			&cli.DurationFlag{
				Name:  "duration",
				Value: 30 * time.Second,
				Usage: "how long to keep playing",
			},
			&cli.DurationFlag{
				Name:  "interval",
				Value: 100 * time.Millisecond,
				Usage: "delay between a bot's actions",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// stats aggregates what all bots sent and received.
type stats struct {
	sent     atomic.Int64
	received atomic.Int64
	errors   atomic.Int64
}

func run(ctx context.Context, cmd *cli.Command) error {
	url := cmd.String("server")
	if room := cmd.String("room"); room != "" {
		url += "?room=" + room
	}

	bots := cmd.Int("bots")
	duration := cmd.Duration("duration")
	interval := cmd.Duration("interval")

	log.Printf("Launching %d bots against %s for %s", bots, url, duration)

	runCtx, cancel := context.WithTimeout(ctx, duration)
	defer cancel()

	var tally stats
	var wg sync.WaitGroup
	for i := 0; i < bots; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if err := runBot(runCtx, n, url, interval, &tally); err != nil {
				tally.errors.Add(1)
				log.Printf("bot %d: %v", n, err)
			}
		}(i)
	}
	wg.Wait()

	log.Printf("Done: sent %d requests, received %d events, %d bot errors",
		tally.sent.Load(), tally.received.Load(), tally.errors.Load())
	return nil
}

// runBot plays one connection until ctx expires.
func runBot(ctx context.Context, n int, url string, interval time.Duration, tally *stats) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	// Drain pushes in the background so the server never sees a full
	// send queue for this bot.
	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			tally.received.Add(int64(len(strings.Split(string(data), "\n"))))
		}
	}()

	send := func(req transport.Request) error {
		data, err := json.Marshal(req)
		if err != nil {
			return err
		}
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return err
		}
		tally.sent.Add(1)
		return nil
	}

	pos := state.Vector3{X: float64(n * 10)}
	if err := send(transport.Request{Op: transport.OpJoin, Position: pos}); err != nil {
		return fmt.Errorf("join: %w", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(n)))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			return nil

		case <-ticker.C:
			pos.X += rng.Float64()*2 - 1
			pos.Z += rng.Float64()*2 - 1

			var req transport.Request
			switch rng.Intn(10) {
			case 0:
				req = transport.Request{
					Op:          transport.OpShoot,
					Position:    pos,
					Velocity:    state.Vector3{Z: 15},
					Rotation:    state.IdentityQuaternion(),
					LaunchForce: 10 + rng.Float64()*20,
				}
			default:
				req = transport.Request{
					Op:       transport.OpMove,
					Position: pos,
					Rotation: state.IdentityQuaternion(),
				}
			}

			if err := send(req); err != nil {
				return fmt.Errorf("send: %w", err)
			}
		}
	}
}
