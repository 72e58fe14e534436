package db

import "fmt"

// sampleCameras is the starter dataset of known UK camera locations used
// for initial setup.
var sampleCameras = []SpeedCamera{
	// London area
	{Latitude: 51.5074, Longitude: -0.1278, CameraType: CameraTypeFixed, RoadName: strPtr("A4 Cromwell Road"), SpeedLimit: intPtr(30)},
	{Latitude: 51.5155, Longitude: -0.1419, CameraType: CameraTypeFixed, RoadName: strPtr("A40 Marylebone Road"), SpeedLimit: intPtr(40)},
	{Latitude: 51.4924, Longitude: -0.1917, CameraType: CameraTypeRedLight, RoadName: strPtr("A4 Earl's Court Road"), SpeedLimit: intPtr(30)},
	{Latitude: 51.5267, Longitude: -0.0873, CameraType: CameraTypeFixed, RoadName: strPtr("A10 City Road"), SpeedLimit: intPtr(30)},
	{Latitude: 51.4818, Longitude: -0.1252, CameraType: CameraTypeAverageSpeedStart, RoadName: strPtr("A3 Brixton Road"), SpeedLimit: intPtr(30)},
	{Latitude: 51.4695, Longitude: -0.1161, CameraType: CameraTypeAverageSpeedEnd, RoadName: strPtr("A3 Brixton Road"), SpeedLimit: intPtr(30)},
	// M25
	{Latitude: 51.6835, Longitude: 0.0342, CameraType: CameraTypeAverageSpeedStart, RoadName: strPtr("M25 Junction 26-27"), SpeedLimit: intPtr(70)},
	{Latitude: 51.7012, Longitude: 0.0824, CameraType: CameraTypeAverageSpeedEnd, RoadName: strPtr("M25 Junction 26-27"), SpeedLimit: intPtr(70)},
	// Birmingham area
	{Latitude: 52.4862, Longitude: -1.8904, CameraType: CameraTypeFixed, RoadName: strPtr("A38 Bristol Road"), SpeedLimit: intPtr(40)},
	{Latitude: 52.4774, Longitude: -1.9132, CameraType: CameraTypeFixed, RoadName: strPtr("A456 Hagley Road"), SpeedLimit: intPtr(40)},
	{Latitude: 52.5127, Longitude: -1.8716, CameraType: CameraTypeRedLight, RoadName: strPtr("A34 Birchfield Road"), SpeedLimit: intPtr(30)},
	// Manchester area
	{Latitude: 53.4808, Longitude: -2.2426, CameraType: CameraTypeFixed, RoadName: strPtr("A56 Chester Road"), SpeedLimit: intPtr(30)},
	{Latitude: 53.4723, Longitude: -2.2380, CameraType: CameraTypeFixed, RoadName: strPtr("A5103 Princess Road"), SpeedLimit: intPtr(40)},
	{Latitude: 53.4944, Longitude: -2.2235, CameraType: CameraTypeAverageSpeedStart, RoadName: strPtr("A635 Ashton Old Road"), SpeedLimit: intPtr(40)},
	// Leeds area
	{Latitude: 53.7996, Longitude: -1.5491, CameraType: CameraTypeFixed, RoadName: strPtr("A58 Clay Pit Lane"), SpeedLimit: intPtr(30)},
	{Latitude: 53.8067, Longitude: -1.5373, CameraType: CameraTypeFixed, RoadName: strPtr("A64 York Road"), SpeedLimit: intPtr(40)},
	// Glasgow area
	{Latitude: 55.8642, Longitude: -4.2518, CameraType: CameraTypeFixed, RoadName: strPtr("M8 Kingston Bridge"), SpeedLimit: intPtr(50)},
	{Latitude: 55.8554, Longitude: -4.2487, CameraType: CameraTypeRedLight, RoadName: strPtr("A8 Argyle Street"), SpeedLimit: intPtr(30)},
	// Edinburgh area
	{Latitude: 55.9533, Longitude: -3.1883, CameraType: CameraTypeFixed, RoadName: strPtr("A1 London Road"), SpeedLimit: intPtr(30)},
	{Latitude: 55.9418, Longitude: -3.2047, CameraType: CameraTypeFixed, RoadName: strPtr("A7 Dalkeith Road"), SpeedLimit: intPtr(40)},
}

// SeedCameras replaces the camera table contents with the sample UK
// dataset and returns the number of cameras inserted.
func (db *DB) SeedCameras() (int, error) {
	if err := db.DeleteAllCameras(); err != nil {
		return 0, err
	}

	for _, cam := range sampleCameras {
		cam.IsActive = true
		if err := db.CreateCamera(&cam); err != nil {
			return 0, fmt.Errorf("failed to seed camera at (%f, %f): %w", cam.Latitude, cam.Longitude, err)
		}
	}
	return len(sampleCameras), nil
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
