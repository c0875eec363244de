package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/veridoc"
	"github.com/poiesic/veridoc/config"
	"github.com/poiesic/veridoc/ingest"
)

// Synthetic brokerage agreement used when no source file is given. Pages
// are separated by form feeds, matching the extractor's page convention.
var pages = []string{
	`MASTER BROKERAGE SERVICES AGREEMENT

This Master Brokerage Services Agreement is entered into between Atlas
Capital Brokerage Ltda., a brokerage house enrolled with the National
Registry of Legal Entities under CNPJ No. 12.345.678/0001-90, with its
head office in São Paulo, and the Client identified in the registration
form, together referred to as the Parties.

The Brokerage is duly authorized by the Securities and Exchange
Commission of Brazil to intermediate transactions in the organized
markets, including the A5X Exchange derivatives segment, and maintains
its registration in good standing.`,

	`CLAUSE ONE - SETTLEMENT

1.1. Financial settlement of transactions executed under this Agreement
occurs within two business days from the trade date, following the
settlement cycle of the clearinghouse.

1.2. The Client authorizes the Brokerage to debit the settlement account
for fees, commissions and exchange charges. Late payment accrues a
non-compensatory fine of two percent plus interest of one percent per
month, calculated pro rata die.

1.3. Brokerage fees follow the schedule published by the Brokerage,
which may be updated upon thirty days prior notice to the Client.`,

	`CLAUSE TWO - GUARANTEES

2.1. The Client shall maintain margin deposits and other collateral
required by the clearinghouse for open positions, in cash, government
bonds or other assets accepted by the Brokerage.

2.2. The Brokerage may liquidate positions and execute guarantees when
the Client fails to meet a margin call within the deadline, without
prejudice to recovery of any remaining balance.`,

	`CLAUSE THREE - CONFIDENTIALITY

3.1. The Parties shall keep strictly confidential all information
exchanged under this Agreement, including registration data, positions
and transaction history, disclosing it only as required by law or by
order of a competent authority or self-regulatory body.

3.2. The confidentiality obligation survives termination of this
Agreement for five years.`,

	`CLAUSE FOUR - DISPUTE RESOLUTION

4.1. Any dispute arising from this Agreement shall be resolved by
arbitration before the Market Arbitration Chamber, under its rules, by a
panel of three arbitrators, with the seat of arbitration in the city of
São Paulo.

4.2. For matters not subject to arbitration, the Parties elect the
courts of the Judicial District of São Paulo, State of São Paulo,
waiving any other forum however privileged.`,

	`CLAUSE FIVE - TERM AND TERMINATION

5.1. This Agreement is executed for an indefinite term and may be
terminated by either Party upon thirty days written notice, without
penalty, subject to the settlement of open positions and outstanding
obligations.

5.2. Trading on the A5X Exchange segment is further governed by the
exchange's operating rules, which the Client declares to know and
accept.

São Paulo, execution date as registered in the Brokerage's systems.`,
}

var (
	srcFileName = flag.String("src", "", "file of seed document text")
	docName     = flag.String("name", "brokerage_agreement.txt", "filename to write the built-in document to")
	docType     = flag.String("type", "contract", "document type label")
	force       = flag.Bool("force", false, "reindex if already indexed")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

func main() {
	path := *srcFileName
	if path == "" {
		// Write the built-in document to disk so later audit runs can
		// find the raw text for the possible-answer pre-pass.
		path = *docName
		if err := os.WriteFile(path, []byte(strings.Join(pages, "\f")), 0o644); err != nil {
			panic(err)
		}
	}

	engine, err := veridoc.New(config.DefaultConfig())
	if err != nil {
		panic(err)
	}
	defer engine.Close()

	pipeline, err := engine.NewPipeline(ingest.WithProgress(os.Stderr))
	if err != nil {
		panic(err)
	}
	defer pipeline.Release()

	ctx := context.Background()
	result, err := pipeline.Index(ctx, path, *docType, ingest.IndexOptions{Force: *force})
	if err != nil {
		panic(err)
	}

	slog.Info("seeded document",
		"file", result.Filename,
		"pages", result.TotalPages,
		"chunks", result.IndexedChunks)
}
