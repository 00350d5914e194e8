package models

// Device models
type DeviceInfo struct {
	DevicePath string `json:"device_path" example:"/dev/video0" doc:"Device node"`
	DeviceName string `json:"device_name" example:"HD USB Camera" doc:"Driver reported name"`
	DeviceID   string `json:"device_id" example:"usb-046d_HD_USB_Camera-video-index0" doc:"Stable device identifier"`
	Caps       uint32 `json:"caps" example:"69206017" doc:"V4L2 capability bits"`
}

type DeviceData struct {
	Devices   []DeviceInfo `json:"devices" doc:"Capture devices"`
	Count     int          `json:"count" example:"1" doc:"Number of capture devices"`
	HasCamera bool         `json:"has_camera" example:"true" doc:"True when at least one capture device exists"`
}

type DeviceResponse struct {
	Body DeviceData
}

type RefreshDevicesRequest struct {
	Refresh bool `query:"refresh" doc:"Enumerate devices again instead of returning the cached list"`
}
