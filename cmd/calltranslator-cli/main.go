package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	apiHost string
	token   string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "calltranslator-cli",
		Short: "CLI para administrar el traductor de eventos de llamada",
		Long:  `Una herramienta de línea de comandos para consultar y administrar el traductor de forma remota.`,
	}

	rootCmd.PersistentFlags().StringVar(&apiHost, "host", "http://localhost:8080", "URL base de la API (ej: http://209.38.233.46:8080)")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Token JWT para rutas administrativas")

	var statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Muestra el estado del traductor (canales, bridges, clientes websocket)",
		Run:   runStatus,
	}

	var healthCmd = &cobra.Command{
		Use:   "health",
		Short: "Verifica que el servicio responda",
		Run:   runHealth,
	}

	var recentCmd = &cobra.Command{
		Use:   "recent",
		Short: "Muestra los últimos eventos de llamada traducidos",
		Run:   runRecent,
	}

	var reconnectCmd = &cobra.Command{
		Use:   "reconnect",
		Short: "Fuerza una reconexión al AMI (requiere --token)",
		Run:   runReconnect,
	}

	rootCmd.AddCommand(statusCmd, healthCmd, recentCmd, reconnectCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runHealth(cmd *cobra.Command, args []string) {
	printGet(apiHost + "/health")
}

func runStatus(cmd *cobra.Command, args []string) {
	body, err := getJSON(apiHost + "/stats")
	if err != nil {
		fmt.Printf("Error de conexión: %v\n", err)
		return
	}

	var stats map[string]interface{}
	if err := json.Unmarshal(body, &stats); err != nil {
		fmt.Println(string(body))
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Uptime (s)\t%v\n", stats["uptime_seconds"])
	fmt.Fprintf(w, "Canales activos\t%v\n", stats["channels"])
	fmt.Fprintf(w, "Bridges activos\t%v\n", stats["bridges"])
	fmt.Fprintf(w, "Clientes WebSocket\t%v\n", stats["websocket_clients"])
	w.Flush()
}

func runRecent(cmd *cobra.Command, args []string) {
	printGet(apiHost + "/events/recent")
}

func runReconnect(cmd *cobra.Command, args []string) {
	req, err := http.NewRequest(http.MethodPost, apiHost+"/admin/reconnect", nil)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error de conexión: %v\n", err)
		return
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		fmt.Println("Éxito!")
		fmt.Println(string(body))
	} else {
		fmt.Printf("Error (%s): %s\n", resp.Status, string(body))
	}
}

func getJSON(url string) ([]byte, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func printGet(url string) {
	body, err := getJSON(url)
	if err != nil {
		fmt.Printf("Error de conexión: %v\n", err)
		return
	}
	fmt.Println(string(body))
}
