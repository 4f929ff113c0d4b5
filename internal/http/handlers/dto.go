package handlers

import (
	"time"

	"github.com/vantrack/server/internal/fleet"
	"github.com/vantrack/server/internal/model"
)

// vehicleResponse is the vehicle object in API responses
type vehicleResponse struct {
	ID               int64          `json:"id"`
	Plate            string         `json:"plate"`
	DriverName       string         `json:"driver_name"`
	VestColor        string         `json:"vest_color"`
	ResponsibleName  *string        `json:"responsible_name"`
	DriverPhone      *string        `json:"driver_phone"`
	ResponsiblePhone *string        `json:"responsible_phone"`
	LastSeen         *time.Time     `json:"last_seen"`
	PreviousSeen     *time.Time     `json:"previous_seen"`
	Elapsed          *fleet.Elapsed `json:"elapsed,omitempty"`
}

func toVehicleResponse(v model.Vehicle) vehicleResponse {
	resp := vehicleResponse{
		ID:               v.ID,
		Plate:            v.Plate,
		DriverName:       v.DriverName,
		VestColor:        string(v.VestColor),
		ResponsibleName:  v.ResponsibleName,
		DriverPhone:      v.DriverPhone,
		ResponsiblePhone: v.ResponsiblePhone,
		LastSeen:         v.LastSeen,
		PreviousSeen:     v.PreviousSeen,
	}
	if gap, ok := fleet.SightingGap(v); ok {
		resp.Elapsed = &gap
	}
	return resp
}

// vehicleRequest is the request body for admin create and edit
type vehicleRequest struct {
	Plate            string `json:"plate"`
	DriverName       string `json:"driver_name"`
	VestColor        string `json:"vest_color"`
	ResponsibleName  string `json:"responsible_name"`
	DriverPhone      string `json:"driver_phone"`
	ResponsiblePhone string `json:"responsible_phone"`
}

func (req vehicleRequest) input() fleet.VehicleInput {
	return fleet.VehicleInput{
		Plate:            req.Plate,
		DriverName:       req.DriverName,
		VestColor:        req.VestColor,
		ResponsibleName:  req.ResponsibleName,
		DriverPhone:      req.DriverPhone,
		ResponsiblePhone: req.ResponsiblePhone,
	}
}

// searchResponse is the JSON response for plate search
type searchResponse struct {
	Vehicle  vehicleResponse `json:"vehicle"`
	Flexible bool            `json:"flexible"`
}

// codeResponse is the JSON shape of the daily code endpoints
type codeResponse struct {
	Success   bool   `json:"success"`
	Codigo    string `json:"codigo,omitempty"`
	Fecha     string `json:"fecha,omitempty"`
	Mensaje   string `json:"mensaje,omitempty"`
	Error     string `json:"error,omitempty"`
	Details   string `json:"details,omitempty"`
	Generated *bool  `json:"generado,omitempty"`
}

// accessLogResponse is one access log row
type accessLogResponse struct {
	ID         string    `json:"id"`
	CodeUsed   string    `json:"code_used"`
	UserType   string    `json:"user_type"`
	AccessedAt time.Time `json:"accessed_at"`
	IP         string    `json:"ip"`
}

// sessionResponse describes the current or newly created session
type sessionResponse struct {
	Success   bool   `json:"success"`
	Role      string `json:"role"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
}
