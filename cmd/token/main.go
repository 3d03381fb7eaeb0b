// Command token mints an access token signed with JWT_SECRET for calling
// the API locally, e.g.
//
//	go run ./cmd/token -user 7 -role CUSTOMER
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/gourmet-table/internal/middleware"
	"github.com/iliyamo/gourmet-table/internal/utils"
)

func main() {
	_ = godotenv.Load()

	user := flag.Uint64("user", 0, "user id placed in the sub claim")
	role := flag.String("role", middleware.RoleCustomer, "CUSTOMER or ADMIN")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	r := strings.ToUpper(*role)
	if r != middleware.RoleCustomer && r != middleware.RoleAdmin {
		fmt.Fprintf(os.Stderr, "unknown role %q\n", *role)
		os.Exit(2)
	}
	tok, err := utils.NewAccessToken(os.Getenv("JWT_SECRET"), *user, r, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "token:", err)
		os.Exit(1)
	}
	fmt.Println(tok.Token)
}
