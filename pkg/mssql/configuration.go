// Package mssql provides the value overlay for the SQL Server chart.
package mssql

import "fmt"

// Configuration holds the SQL Server chart values. The chart reads flat dotted keys.
type Configuration struct {
	ImageRepository string `json:"image.repository"`
	ImageTag        string `json:"image.tag"`
	AcceptEULA      string `json:"ACCEPT_EULA.value"`
	ProductID       string `json:"MSSQL_PID.value"`
	AgentEnabled    string `json:"MSSQL_AGENT_ENABLED.value"`
	Hostname        string `json:"hostname"`
	SAPassword      string `json:"sa_password"`
	ContainerPort   int    `json:"containers.ports.containerPort"`
	ServiceType     string `json:"service.type"`
	ServicePort     int    `json:"service.port"`
}

const (
	DefaultPort     = 1433
	DefaultPassword = "StrongPass1!"
)

// DefaultConfiguration returns a developer edition server exposed through a load balancer.
func DefaultConfiguration() Configuration {
	return Configuration{
		ImageRepository: "mcr.microsoft.com/mssql/server",
		ImageTag:        "2019-latest",
		AcceptEULA:      "Y",
		ProductID:       "Developer",
		AgentEnabled:    "true",
		Hostname:        "mssqllatest",
		SAPassword:      DefaultPassword,
		ContainerPort:   DefaultPort,
		ServiceType:     "LoadBalancer",
		ServicePort:     DefaultPort,
	}
}

// ConnectionString returns an ADO style connection string for a server reachable at host:port.
func (c Configuration) ConnectionString(host string, port int) string {
	return fmt.Sprintf("Server=%s,%d;User Id=sa;Password=%s;TrustServerCertificate=True", host, port, c.SAPassword)
}
