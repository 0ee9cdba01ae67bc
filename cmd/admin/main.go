package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"ecu-stand/internal/core/cache"
	"ecu-stand/internal/core/config"
	"ecu-stand/internal/core/logger"
	"ecu-stand/internal/features/admin/dashboard"
	adminservice "ecu-stand/internal/features/admin/service"
	"ecu-stand/internal/features/orders/domain"
	orderadapter "ecu-stand/internal/features/orders/adapters"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const help = `Commands:
  list                  show orders, newest first
  show <id>             expand or collapse an order
  status <id> <status>  set Pending, Packed, Shipped, Delivered or Canceled
  delete <id>           ask to delete an order
  confirm | cancel      answer a pending delete
  stats                 show analytics
  refresh               reload from the store
  quit`

func main() {
	flags := pflag.NewFlagSet("admin", pflag.ExitOnError)
	passphrase := flags.String("passphrase", "", "access code; prompted when empty")
	flags.String("redis-url", "", "order record store; empty keeps the configured REDIS_URL")
	flags.Parse(os.Args[1:])

	v := viper.New()
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisCache, err := cache.NewRedisAdapter(cfg.Redis.URL)
	if err != nil {
		l.Fatal("Failed to parse Redis URL", zap.Error(err))
	}
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		l.Fatal("Redis Health Check Failed", zap.Error(err))
	}

	store := orderadapter.NewRedisOrderStore(redisCache)
	if err := store.Watch(ctx); err != nil {
		l.Fatal("Failed to watch order changes", zap.Error(err))
	}

	d := dashboard.New(adminservice.NewAdminService(store, cfg.Admin.Passphrase))
	defer d.Close()

	in := bufio.NewScanner(os.Stdin)
	out := os.Stdout

	for d.Locked() {
		code := *passphrase
		*passphrase = ""
		if code == "" {
			fmt.Fprint(out, "Access code: ")
			if !in.Scan() {
				return
			}
			code = strings.TrimSpace(in.Text())
		}
		if err := d.Unlock(ctx, code); err != nil {
			fmt.Fprintln(out, "Invalid Access Code")
		}
	}

	list := func(w io.Writer) { printOrders(w, d) }
	con := newConsole(out, list)
	d.OnChange(con.changed)

	con.show(list)
	con.printf("%s\n", help)

	for {
		con.printf(prompt)
		if !in.Scan() {
			return
		}
		args := strings.Fields(in.Text())
		if len(args) == 0 {
			continue
		}

		var err error
		switch args[0] {
		case "list", "ls":
			con.show(list)
		case "show":
			if err = need(args, 2); err == nil {
				if err = d.ToggleExpand(args[1]); err == nil {
					con.show(list)
				}
			}
		case "status":
			if err = need(args, 3); err == nil {
				err = con.write(func() error { return d.ChangeStatus(ctx, args[1], args[2]) })
				if err == nil {
					con.show(list)
				}
			}
		case "delete", "rm":
			if err = need(args, 2); err == nil {
				if err = d.RequestDelete(args[1]); err == nil {
					con.printf("Delete order %s PERMANENTLY? Type confirm or cancel.\n", args[1])
				}
			}
		case "confirm":
			if err = con.write(func() error { return d.ConfirmDelete(ctx) }); err == nil {
				con.show(list)
			}
		case "cancel":
			d.CancelDelete()
		case "stats":
			con.show(func(w io.Writer) { printAnalytics(w, d) })
		case "refresh":
			if err = d.Refresh(ctx); err == nil {
				con.show(list)
			}
		case "help":
			con.printf("%s\n", help)
		case "quit", "exit":
			return
		default:
			err = fmt.Errorf("unknown command %q", args[0])
		}

		if err != nil {
			con.printf("error: %v\n", err)
		}
	}
}

func need(args []string, n int) error {
	if len(args) < n {
		return fmt.Errorf("%s needs %d argument(s), try help", args[0], n-1)
	}
	return nil
}

func printOrders(w io.Writer, d *dashboard.Dashboard) {
	orders := d.Orders()
	if len(orders) == 0 {
		fmt.Fprintln(w, "No orders yet.")
		return
	}

	expanded := d.Expanded()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tCUSTOMER\tCOUNTRY\tQTY\tTOTAL\tSTATUS")
	for _, o := range orders {
		fmt.Fprintf(tw, "%s\t%s\t%s %s\t%s\t%d\t%s\t%s\n",
			o.ID, o.Date, o.FirstName, o.LastName, o.Country, o.Quantity,
			domain.FormatEUR(o.Pricing().Total), o.Status)
		if o.ID == expanded {
			fmt.Fprintf(tw, "\t  %s, %s\t%s\t%s\t\t\t\n", o.Address, o.City, o.PhoneNumber, o.Email)
		}
	}
	tw.Flush()
}

func printAnalytics(w io.Writer, d *dashboard.Dashboard) {
	a := d.Analytics()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Total orders\t%d\n", a.TotalOrders)
	fmt.Fprintf(tw, "Active orders\t%d\n", a.ActiveOrders)
	fmt.Fprintf(tw, "Canceled orders\t%d\n", a.CanceledOrders)
	fmt.Fprintf(tw, "Revenue\t%s\n", domain.FormatEUR(a.TotalRevenue))
	for _, s := range domain.Statuses() {
		fmt.Fprintf(tw, "  %s\t%d\n", s, a.StatusDistribution[s])
	}
	tw.Flush()
}
