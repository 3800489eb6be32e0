/**
 * Copyright (c) 2019, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package policy_test

import (
	"context"
	"errors"

	"github.com/viaduct-dev/viaduct/flags"
	"github.com/viaduct-dev/viaduct/policy"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func checkCtx() *policy.CheckCtx {
	return &policy.CheckCtx{Context: context.Background(), CheckType: policy.FieldCheck}
}

var _ = Describe("CheckerResult", func() {
	It("treats success as the Combine identity", func() {
		denial := policy.Denied(errors.New("no"))
		Expect(policy.Success().Combine(denial).Err).Should(MatchError(denial.Err))
		Expect(denial.Combine(policy.Success()).Err).Should(MatchError(denial.Err))
	})

	It("prefers the more specific error", func() {
		broad := policy.CheckerResult{Err: errors.New("table denied"), Specificity: 1}
		narrow := policy.CheckerResult{Err: errors.New("row denied"), Specificity: 5}
		Expect(broad.Combine(narrow).Err).Should(MatchError(narrow.Err))
		Expect(narrow.Combine(broad).Err).Should(MatchError(narrow.Err))
	})

	It("keeps the first error on ties, preserving registration order", func() {
		first := policy.CheckerResult{Err: errors.New("first")}
		second := policy.CheckerResult{Err: errors.New("second")}
		Expect(first.Combine(second).Err).Should(MatchError(first.Err))
	})

	It("consults ErrorForResolver for short-circuit decisions", func() {
		advisory := policy.CheckerResult{
			Err:              errors.New("logged only"),
			ErrorForResolver: func(*policy.CheckCtx) bool { return false },
		}
		Expect(advisory.IsErrorForResolver(checkCtx())).Should(BeFalse())
		Expect(policy.Denied(errors.New("hard no")).IsErrorForResolver(checkCtx())).Should(BeTrue())
	})
})

var _ = Describe("Runner", func() {
	It("passes when every checker succeeds", func() {
		runner := policy.NewRunner(flags.Defaults())
		result, shortCircuit := runner.Run([]policy.PreparedCheck{
			{
				Checker: policy.CheckerFunc(func(*policy.CheckCtx) policy.CheckerResult {
					return policy.Success()
				}),
				Ctx: checkCtx(),
			},
		})
		Expect(result.IsSuccess()).Should(BeTrue())
		Expect(shortCircuit).Should(BeFalse())
	})

	It("short-circuits on a hard denial", func() {
		runner := policy.NewRunner(flags.Defaults())
		result, shortCircuit := runner.Run([]policy.PreparedCheck{
			{
				Checker: policy.CheckerFunc(func(*policy.CheckCtx) policy.CheckerResult {
					return policy.Denied(errors.New("denied"))
				}),
				Ctx: checkCtx(),
			},
		})
		Expect(result.Err).Should(HaveOccurred())
		Expect(shortCircuit).Should(BeTrue())
	})

	It("does not short-circuit on an advisory error", func() {
		runner := policy.NewRunner(flags.Defaults())
		result, shortCircuit := runner.Run([]policy.PreparedCheck{
			{
				Checker: policy.CheckerFunc(func(*policy.CheckCtx) policy.CheckerResult {
					return policy.CheckerResult{
						Err:              errors.New("advisory"),
						ErrorForResolver: func(*policy.CheckCtx) bool { return false },
					}
				}),
				Ctx: checkCtx(),
			},
		})
		Expect(result.Err).Should(HaveOccurred())
		Expect(shortCircuit).Should(BeFalse())
	})

	It("skips every checker when EXECUTE_ACCESS_CHECKS is off", func() {
		runner := policy.NewRunner(flags.NewStatic(map[flags.Flag]bool{
			flags.ExecuteAccessChecks: false,
		}))
		invoked := false
		result, shortCircuit := runner.Run([]policy.PreparedCheck{
			{
				Checker: policy.CheckerFunc(func(*policy.CheckCtx) policy.CheckerResult {
					invoked = true
					return policy.Denied(errors.New("denied"))
				}),
				Ctx: checkCtx(),
			},
		})
		Expect(invoked).Should(BeFalse())
		Expect(result.IsSuccess()).Should(BeTrue())
		Expect(shortCircuit).Should(BeFalse())
	})
})
