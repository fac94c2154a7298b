package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"

	"github.com/hyperln/simulator/hypernet"
	"github.com/hyperln/simulator/utils"
	"github.com/hyperln/simulator/workload"
)

func initLogger() *logrus.Logger {
	file := time.Now().Format("20060102030505") + ".sum"
	summaryLogFile, err := os.OpenFile(file, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0766)
	if err != nil {
		fmt.Printf("open log file failed.\n")
	}

	file1 := time.Now().Format("20060102030505") + ".log"
	logFile, err := os.OpenFile(file1, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0766)
	if err != nil {
		fmt.Printf("open log file failed.\n")
	}

	log := logrus.New()

	lfHook := lfshook.NewHook(lfshook.WriterMap{
		logrus.DebugLevel: summaryLogFile,
		logrus.InfoLevel:  summaryLogFile,
		logrus.WarnLevel:  summaryLogFile,
		logrus.ErrorLevel: summaryLogFile,
		logrus.FatalLevel: summaryLogFile,
		logrus.PanicLevel: summaryLogFile,
		logrus.TraceLevel: logFile,
	}, &logrus.JSONFormatter{})
	log.AddHook(lfHook)

	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.TraceLevel)
	return log
}

// workloadEval runs a seeded workload against net and logs the
// aggregate outcome.
func workloadEval(log *logrus.Logger, name string, net *hypernet.HyperNetwork,
	seed int64, numPayments int) (*workload.Executor, error) {

	executor, err := workload.NewBuilder(net, seed).
		SetNumPayments(numPayments).
		Generate()
	if err != nil {
		return nil, err
	}
	if err := executor.Init(); err != nil {
		return nil, err
	}

	fees := executor.PaidFees()
	feeTotal := utils.Amount(0)
	for _, fee := range fees {
		feeTotal += fee
	}

	fields := logrus.Fields{
		"network":  name,
		"seed":     seed,
		"total":    numPayments,
		"success":  len(fees),
		"failed":   executor.NumFailedPayments(),
		"feeTotal": feeTotal,
	}
	if len(fees) > 0 {
		fields["feeAverage"] = float64(feeTotal) / float64(len(fees))
	}
	if executor.NumFailedPayments() > 0 {
		fields["failedAverageSize"] = executor.AverageFailedPaymentSize()
	}
	log.WithFields(fields).Info("executed a workload")

	return executor, nil
}
