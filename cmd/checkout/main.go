package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"ecu-stand/internal/core/cache"
	"ecu-stand/internal/core/config"
	"ecu-stand/internal/core/logger"
	checkoutadapter "ecu-stand/internal/features/checkout/adapters"
	checkoutservice "ecu-stand/internal/features/checkout/service"
	"ecu-stand/internal/features/orders/domain"
	orderadapter "ecu-stand/internal/features/orders/adapters"
	"ecu-stand/internal/features/orders/ports"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const requestTimeout = 30 * time.Second

func main() {
	flags := pflag.NewFlagSet("checkout", pflag.ExitOnError)
	firstName := flags.String("first-name", "", "customer first name")
	lastName := flags.String("last-name", "", "customer last name")
	country := flags.String("country", "", "destination country (Kosovë, Shqipëri, Maqedoni e Veriut)")
	city := flags.String("city", "", "destination city; unlisted cities are sent as typed")
	address := flags.String("address", "", "street address")
	phone := flags.String("phone", "", "phone number without calling code")
	prefix := flags.String("phone-prefix", "", "calling code override (defaults to the country's)")
	email := flags.String("email", "", "customer email")
	quantity := flags.String("quantity", "1", "number of stands")
	dryRun := flags.Bool("dry-run", false, "print the price preview and exit")
	flags.String("api-base-url", "", "intake API root, e.g. https://ecustand.example")
	flags.String("redis-url", "", "order record store; empty keeps the configured REDIS_URL")
	flags.Parse(os.Args[1:])

	v := viper.New()
	v.BindPFlag("API_BASE_URL", flags.Lookup("api-base-url"))
	v.BindPFlag("REDIS_URL", flags.Lookup("redis-url"))
	cfg, err := config.LoadWith(v)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()
	l := logger.Get()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	var store ports.OrderStore
	if redisCache, err := cache.NewRedisAdapter(cfg.Redis.URL); err != nil {
		l.Warn("Order record store disabled", zap.Error(err))
	} else if err := redisCache.Ping(ctx); err != nil {
		l.Warn("Order record store unreachable, the order will not be recorded locally", zap.Error(err))
		redisCache.Close()
	} else {
		defer redisCache.Close()
		store = orderadapter.NewRedisOrderStore(redisCache)
	}

	client := checkoutadapter.NewHTTPIntakeClient(cfg.Client.APIBaseURL, requestTimeout)
	form := checkoutservice.NewForm(client, store)

	must(form.SetFirstName(*firstName))
	must(form.SetLastName(*lastName))
	must(form.SetCountry(*country))
	if c, ok := domain.LookupCountry(*country); ok && *city != "" && !c.HasCity(*city) {
		must(form.SelectCity(domain.OtherCity))
		must(form.SetCustomCity(*city))
	} else {
		must(form.SelectCity(*city))
	}
	must(form.SetAddress(*address))
	must(form.SetPhoneNumber(*phone))
	if *prefix != "" {
		must(form.SetPhonePrefix(*prefix))
	}
	must(form.SetEmail(*email))
	must(form.TypeQuantity(*quantity))
	must(form.BlurQuantity())

	preview := form.Preview()
	fmt.Printf("Çmimi: %d x %s\n", form.Data().Quantity, domain.FormatEUR(preview.BasePrice))
	fmt.Printf("Transporti: %s\n", domain.FormatEUR(preview.ShippingCost))
	fmt.Printf("Totali: %s\n", domain.FormatEUR(preview.Total))

	if err := form.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid order: %v\n", err)
		os.Exit(2)
	}
	if *dryRun {
		return
	}

	order, err := form.Submit(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Order failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Porosia u Konfirmua #%s\n", order.ID)
	fmt.Printf("Ne do t'ju kontaktojmë së shpejti në %s.\n", order.Email)
}

func must(err error) {
	if err != nil {
		log.Fatalf("Form error: %v", err)
	}
}
