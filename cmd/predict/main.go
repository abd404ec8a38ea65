package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"flight-delay-predictor/internal/config"
	"flight-delay-predictor/internal/inference"
	"flight-delay-predictor/internal/models"
	"flight-delay-predictor/internal/services"
	"flight-delay-predictor/pkg/logging"
	"flight-delay-predictor/pkg/metrics"
)

// predict runs a single prediction offline with the server's model and route table
func main() {
	var form models.PredictionForm
	flag.StringVar(&form.DepartureDate, "date", "", "Departure date (YYYY-MM-DD)")
	flag.StringVar(&form.DepartureTime, "time", "", "Departure time (HH:MM)")
	flag.StringVar(&form.Airline, "airline", "", "Airline name")
	flag.StringVar(&form.Origin, "origin", "", "Origin city")
	flag.StringVar(&form.Destination, "destination", "", "Destination city")
	flag.StringVar(&form.WeatherDescription, "weather", "", "Destination weather description")
	flag.StringVar(&form.Temperature, "temperature", "", "Temperature")
	flag.StringVar(&form.Pressure, "pressure", "", "Air pressure")
	flag.StringVar(&form.WindSpeed, "wind-speed", "", "Wind speed")
	bundlePath := flag.String("bundle", "", "Model bundle path (default: model.bundle_path)")
	asJSON := flag.Bool("json", false, "Print the full result as JSON")
	listOptions := flag.Bool("options", false, "List accepted airlines, routes and weather descriptions")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *bundlePath == "" {
		*bundlePath = cfg.Model.BundlePath
	}

	logger := logging.NewStructuredLoggerWithFormat("flight-predict", "1.0.0", logging.ParseLevel(cfg.Logging.Level), "console")
	defer logger.Sync()
	metricsCollector := metrics.NewCollectorWithRegistry("flight_predict", prometheus.NewRegistry())

	bundle, err := inference.LoadBundleFile(*bundlePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load model bundle: %v\n", err)
		os.Exit(1)
	}

	durations, err := cfg.DurationTable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid route table: %v\n", err)
		os.Exit(1)
	}

	svc := services.NewPredictionService(bundle.Model, bundle.Encoders, durations, logger, metricsCollector)

	if *listOptions {
		printOptions(svc.Options())
		return
	}

	output, err := svc.Predict(context.Background(), form)
	if err != nil {
		if pe, ok := models.AsPredictionError(err); ok {
			fmt.Fprintln(os.Stderr, pe.Message)
		} else {
			fmt.Fprintln(os.Stderr, models.GenericErrorMessage(err))
		}
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(output)
		return
	}

	printResult(output)
}

func printOptions(opts models.FormOptions) {
	fmt.Printf("Airlines:          %s\n", strings.Join(opts.Airlines, ", "))
	fmt.Printf("Origins:           %s\n", strings.Join(opts.Origins, ", "))
	fmt.Printf("Destinations:      %s\n", strings.Join(opts.Destinations, ", "))
	fmt.Printf("Weather:           %s\n", strings.Join(opts.Weather, ", "))
	fmt.Printf("Available routes:  %s\n", strings.Join(opts.AvailableRoutes, ", "))
}

func printResult(out *models.PredictionOutput) {
	d := out.Debug

	fmt.Println(strings.Repeat("═", 64))
	fmt.Println(out.Message)
	fmt.Println(strings.Repeat("═", 64))
	fmt.Printf("Airline:            %s\n", d.Airline)
	fmt.Printf("Route:              %s\n", d.Route)
	fmt.Printf("Departure:          %s %s\n", d.DepartureDate, d.DepartureTime)
	fmt.Printf("Nominal duration:   %d min\n", d.NominalDuration)
	fmt.Printf("Normal arrival:     %s\n", d.NormalArrival)
	fmt.Printf("Predicted delay:    %.2f min\n", d.PredictedDelay)
	fmt.Printf("Predicted arrival:  %s\n", d.PredictedArrival)
	fmt.Printf("Model:              %s\n", d.ModelType)
	fmt.Println(strings.Repeat("─", 64))
	fmt.Printf("Date ordinal:       %d\n", d.InputFeatures.DateOrdinal)
	fmt.Printf("Airline encoded:    %s\n", d.InputFeatures.AirlineEncoded)
	fmt.Printf("Route encoded:      %s\n", d.InputFeatures.RouteEncoded)
	fmt.Printf("Weather encoded:    %s\n", d.InputFeatures.DescriptionEncoded)
	fmt.Printf("Temperature:        %g\n", d.InputFeatures.Temperature)
	fmt.Printf("Pressure:           %g\n", d.InputFeatures.Pressure)
	fmt.Printf("Wind speed:         %g\n", d.InputFeatures.WindSpeed)
}
