package tools

import (
	"context"
	"fmt"

	"github.com/osmcp/osmcp/internal/errorsx"
	"github.com/osmcp/osmcp/internal/service"
)

const (
	weatherFailureText = "Failed to retrieve weather information. Please try again later."

	unknownField       = "unknown"
	missingWeatherText = "weather information unavailable"
)

// WeatherArgs names a Japanese prefecture as written in Japanese, e.g. 東京都.
type WeatherArgs struct {
	Prefecture string `mapstructure:"prefecture" json:"prefecture,omitempty" jsonschema:"required,description=Prefecture name in Japanese such as 東京都"`
}

// weatherFailure shows the guidance text for unsupported prefectures and a
// fixed message for everything else. Provider detail is only logged.
func weatherFailure(err error) string {
	if errorsx.HasReason(err, errorsx.ReasonUnsupportedInput) {
		return err.Error()
	}
	return weatherFailureText
}

// GetWeatherTool fetches the JMA forecast overview for a prefecture.
func GetWeatherTool(client WeatherClient) Tool {
	return newTool(
		"GetWeatherTool",
		"Gets the Japan Meteorological Agency forecast overview for a Japanese prefecture",
		map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"prefecture": stringProperty("Prefecture name in Japanese, e.g. 東京都, 大阪府, 北海道"),
			},
			"required": []interface{}{"prefecture"},
		},
		weatherFailure,
		func(ctx context.Context, args WeatherArgs) (string, error) {
			code, ok := service.LookupAreaCode(args.Prefecture)
			if !ok {
				return "", errorsx.New(fmt.Sprintf(
					"Unsupported prefecture: %s. Please specify one of the %d prefectures of Japan (e.g. 東京都, 大阪府, 北海道).",
					args.Prefecture, service.PrefectureCount,
				), errorsx.ReasonUnsupportedInput)
			}

			overview, err := client.FetchOverview(ctx, code)
			if err != nil {
				return "", errorsx.Wrap(err, errorsx.ReasonWeather)
			}

			return fmt.Sprintf("Weather overview for %s\nPublishing office: %s\nReport time: %s\n\n%s",
				args.Prefecture,
				orDefault(overview.PublishingOffice, unknownField),
				orDefault(overview.ReportDatetime, unknownField),
				orDefault(overview.Text, missingWeatherText),
			), nil
		},
	)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
