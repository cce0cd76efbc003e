// Package mqttgps feeds the locator from driver phones publishing GPS
// fixes over MQTT. Phones publish to frota/<plate>/gps, the client
// keeps only the latest fix per plate.
package mqttgps

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/config"
	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/locator"
)

type Client struct {
	mu     sync.RWMutex
	cfg    *config.LocatorConfig
	conn   mqtt.Client
	fixes  map[string]locator.Position
	maxAge time.Duration
}

func NewClient(cfg *config.LocatorConfig) *Client {
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = 2 * time.Minute
	}
	return &Client{
		cfg:    cfg,
		fixes:  make(map[string]locator.Position),
		maxAge: maxAge,
	}
}

// Connect dials the broker and subscribes to the fleet topic. The
// paho client reconnects and resubscribes on its own after that.
func (c *Client) Connect() error {
	opts := mqtt.NewClientOptions().
		AddBroker(c.cfg.Broker).
		SetClientID(c.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(conn mqtt.Client) {
			token := conn.Subscribe(c.cfg.Topic, 1, c.onFix)
			token.Wait()
			if err := token.Error(); err != nil {
				log.Printf("[locator] subscribe %s: %v", c.cfg.Topic, err)
			}
		})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}

	c.mu.Lock()
	c.conn = client
	c.mu.Unlock()
	return nil
}

type fixPayload struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	SpeedKn float64 `json:"speed_kn"`
}

func (c *Client) onFix(_ mqtt.Client, msg mqtt.Message) {
	plate := plateFromTopic(msg.Topic())
	if plate == "" {
		return
	}
	var p fixPayload
	if err := json.Unmarshal(msg.Payload(), &p); err != nil {
		log.Printf("[locator] bad fix on %s: %v", msg.Topic(), err)
		return
	}
	c.mu.Lock()
	c.fixes[plate] = locator.Position{Lat: p.Lat, Lon: p.Lon, SpeedKn: p.SpeedKn, At: time.Now()}
	c.mu.Unlock()
}

// ReadPosition returns the latest fix for plate. Fixes older than the
// configured max age count as no fix: a phone that stopped publishing
// should not pin its vehicle to a ghost position.
func (c *Client) ReadPosition(plate string) (locator.Position, error) {
	c.mu.RLock()
	pos, ok := c.fixes[plate]
	c.mu.RUnlock()
	if !ok || time.Since(pos.At) > c.maxAge {
		return locator.Position{}, locator.ErrNoFix
	}
	return pos, nil
}

func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn != nil && c.conn.IsConnected()
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Disconnect(1000)
		c.conn = nil
	}
}

// plateFromTopic pulls the plate out of frota/<plate>/gps.
func plateFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 {
		return ""
	}
	return parts[1]
}
