// Command mailsink runs a local SMTP server that prints every message
// it receives. Point SMTP_ENDPOINT at it to exercise contact delivery
// in development without a real mail account.
package main

import (
	"flag"
	"log"
	"net"

	"github.com/mhale/smtpd"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:2525", "address to listen on")
	flag.Parse()
	log.Printf("mailsink listening on %s", *addr)
	log.Fatal(smtpd.ListenAndServe(*addr, mailHandler, "site-backend mailsink", ""))
}

func mailHandler(origin net.Addr, from string, to []string, data []byte) error {
	log.Printf("message from %s (%s) to %v:\n%s", from, origin, to, data)
	return nil
}
