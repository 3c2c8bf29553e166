package weather

// Bundle is the combined forecast and air-quality payload for one location.
// Every series tolerates missing values.
type Bundle struct {
	Latitude  float64       `json:"latitude"`
	Longitude float64       `json:"longitude"`
	Timezone  string        `json:"timezone,omitempty"`
	Current   *Current      `json:"current,omitempty"`
	Units     *CurrentUnits `json:"units,omitempty"`
	Hourly    *Hourly       `json:"hourly,omitempty"`
	Daily     *Daily        `json:"daily,omitempty"`
	Air       *AirQuality   `json:"air,omitempty"`
}

// Current holds the current conditions.
type Current struct {
	Time                string   `json:"time"`
	Temperature         *float64 `json:"temperature_2m"`
	RelativeHumidity    *float64 `json:"relative_humidity_2m"`
	ApparentTemperature *float64 `json:"apparent_temperature"`
	WeatherCode         *int     `json:"weather_code"`
	WindSpeed           *float64 `json:"wind_speed_10m"`
	SurfacePressure     *float64 `json:"surface_pressure"`
}

// CurrentUnits holds the units reported for the current conditions.
type CurrentUnits struct {
	Temperature     string `json:"temperature_2m,omitempty"`
	WindSpeed       string `json:"wind_speed_10m,omitempty"`
	SurfacePressure string `json:"surface_pressure,omitempty"`
}

// Hourly holds the hourly forecast series.
type Hourly struct {
	Time                     []string   `json:"time"`
	Temperature              []*float64 `json:"temperature_2m"`
	PrecipitationProbability []*float64 `json:"precipitation_probability"`
	WindSpeed                []*float64 `json:"wind_speed_10m"`
}

// Daily holds the daily forecast series.
type Daily struct {
	Time                        []string   `json:"time"`
	TemperatureMax              []*float64 `json:"temperature_2m_max"`
	TemperatureMin              []*float64 `json:"temperature_2m_min"`
	PrecipitationProbabilityMax []*float64 `json:"precipitation_probability_max"`
	Sunrise                     []string   `json:"sunrise"`
	Sunset                      []string   `json:"sunset"`
	UVIndexMax                  []*float64 `json:"uv_index_max"`
}

// AirQuality holds the hourly air-quality series.
type AirQuality struct {
	Time  []string   `json:"time"`
	PM10  []*float64 `json:"pm10"`
	PM25  []*float64 `json:"pm2_5"`
	USAQI []*float64 `json:"us_aqi"`
}

// Open-Meteo API response types.

type forecastResponse struct {
	Latitude     float64      `json:"latitude"`
	Longitude    float64      `json:"longitude"`
	Timezone     string       `json:"timezone"`
	Current      *Current     `json:"current"`
	CurrentUnits *CurrentUnits `json:"current_units"`
	Hourly       *Hourly      `json:"hourly"`
	Daily        *Daily       `json:"daily"`
}

type airQualityResponse struct {
	Hourly *AirQuality `json:"hourly"`
}
