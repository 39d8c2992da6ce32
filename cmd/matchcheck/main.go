package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/arkclose/netsheet-tracker/internal/listings"
)

// matchcheck is a diagnostic for the address matcher: feed it contract
// addresses and see which listing row each one resolves to and why.
//
//	matchcheck -listings listings.csv "890 Clark Cir Bentonville, AR 72713"
//	cat addresses.txt | matchcheck -listings listings.csv
func main() {
	listCSV := flag.String("listings", "listings.csv", "listings CSV path")
	flag.Parse()

	table, err := listings.LoadCSV(*listCSV)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load listings: %v\n", err)
		os.Exit(1)
	}

	addresses := flag.Args()
	if len(addresses) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				addresses = append(addresses, line)
			}
		}
		if err := scanner.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "read stdin: %v\n", err)
			os.Exit(1)
		}
	}
	if len(addresses) == 0 {
		fmt.Fprintln(os.Stderr, "no addresses given (args or stdin)")
		os.Exit(1)
	}

	misses := 0
	for _, addr := range addresses {
		norm := listings.Normalize(addr)
		rec, reason := listings.Match(addr, table)
		if rec == nil {
			misses++
			fmt.Printf("MISS  %-45s normalized=%q\n", addr, norm.Full)
			continue
		}
		fmt.Printf("HIT   %-45s -> %-30s reason=%s taxes=%.2f commission=%.4f\n",
			addr, rec.Address, reason, rec.AnnualTaxes, rec.CommissionPercent)
	}

	fmt.Printf("\n%d addresses, %d hits, %d misses\n", len(addresses), len(addresses)-misses, misses)
	if misses > 0 {
		os.Exit(2)
	}
}
