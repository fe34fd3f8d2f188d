package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"calltranslator/internal/ami"
	"calltranslator/internal/api"
	"calltranslator/internal/auth"
	"calltranslator/internal/billing"
	"calltranslator/internal/config"
	"calltranslator/internal/core"
	"calltranslator/internal/replay"
	"calltranslator/internal/reporter"
	"calltranslator/internal/sink"
	"calltranslator/internal/transport"
)

const defaultConfigPath = "/etc/calltranslator/calltranslator.yaml"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "run":
		cmdRun(false)
	case "replay":
		cmdRun(true)
	case "version":
		fmt.Println("calltranslator v1.0")
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Comando desconocido: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Traductor de eventos de llamada - Asterisk AMI")
	fmt.Println()
	fmt.Println("Uso:")
	fmt.Println("  calltranslator run                    Conecta a un AMI real y traduce eventos en vivo")
	fmt.Println("  calltranslator replay                 Reproduce una traza grabada (ver replay.path en config)")
	fmt.Println("  calltranslator version                Muestra la versión")
	fmt.Println()
}

// cmdRun inicia el motor de traducción y, opcionalmente, el transporte
// de reproducción en lugar del cliente AMI en vivo.
func cmdRun(useReplay bool) {
	log.Println("[Main] Calltranslator Service v1.0")

	configPath := os.Getenv("CALLTRANSLATOR_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("[Main] no se pudo leer %s, usando configuración por defecto: %v", configPath, err)
		cfg = config.Default()
	}

	auth.Configure(cfg.Auth.SecretKey)

	rep := reporter.New(cfg.Reporter)
	rep.TraceMsg("iniciando traductor de eventos")

	recent := sink.NewRecent(200)
	hub := sink.NewHub(recent)
	console := sink.NewConsole(rep.Zerolog())

	var recorder *billing.Recorder
	var closeRecorder func()
	if cfg.Billing.Enabled {
		conn, err := billing.NewConnection(cfg.Billing)
		if err != nil {
			log.Printf("[Main] billing deshabilitado, error conectando: %v", err)
		} else {
			if err := conn.EnsureSchema(); err != nil {
				log.Printf("[Main] billing: %v", err)
			}
			recorder = billing.NewRecorder(conn)
			closeRecorder = func() {
				recorder.Stop()
				conn.Close()
			}
			log.Println("[Main] ✓ billing conectado")
		}
	}

	var subscriber core.Subscriber
	if recorder != nil {
		subscriber = sink.NewMulti(console, hub, recorder)
	} else {
		subscriber = sink.NewMulti(console, hub)
	}

	engine := core.NewEngine(subscriber, rep)

	var runner transport.Runner
	var reconn api.Reconnector
	if useReplay {
		runner = replay.NewRunner(cfg.Replay.Path, cfg.Replay.Speed)
		log.Printf("[Main] modo reproducción: %s", cfg.Replay.Path)
	} else {
		client := ami.NewClient(&cfg.AMI)
		runner = client
		reconn = client
		log.Printf("[Main] modo en vivo: %s", cfg.AMI.Address())
	}

	server := api.NewServer(cfg, engine, hub, recent, reconn)
	go func() {
		if err := server.Start(); err != nil {
			log.Printf("[Main] servidor API detenido: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runner.Run(ctx, engine); err != nil && ctx.Err() == nil {
		log.Printf("[Main] transporte detenido con error: %v", err)
	}

	if closeRecorder != nil {
		closeRecorder()
	}
	log.Println("[Main] apagado completo")
}
