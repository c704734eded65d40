// Package main 提供 dcpsctl 命令行入口
//
// dcpsctl 加载配置，在指定的域上并发创建参与者，输出查找结果，
// 可选地等待退出信号，然后逐个删除。任何一步失败都以非零状态退出。
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-dcps"
	"github.com/dep2p/go-dcps/pkg/lib/log"
)

var logger = log.Logger("dcps/cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════

// cliOptions 命令行参数
type cliOptions struct {
	configFile  string
	domains     []uint
	entityName  string
	autoEnable  bool
	hold        bool
	logJSON     bool
	showVersion bool

	// autoEnableSet 是否显式指定了 --auto-enable
	autoEnableSet bool
}

func parseFlags(args []string, out io.Writer) (*cliOptions, error) {
	o := &cliOptions{}
	fs := pflag.NewFlagSet("dcpsctl", pflag.ContinueOnError)
	fs.SetOutput(out)

	fs.StringVarP(&o.configFile, "config", "c", "", "配置文件路径（.json / .toml）")
	fs.UintSliceVarP(&o.domains, "domain", "d", []uint{0}, "要创建参与者的域号，可重复或逗号分隔")
	fs.StringVar(&o.entityName, "entity-name", "", "进程级实体名（覆盖配置文件）")
	fs.BoolVar(&o.autoEnable, "auto-enable", true, "创建后自动启用参与者（覆盖配置文件）")
	fs.BoolVar(&o.hold, "hold", false, "创建完成后等待 Ctrl+C 再删除")
	fs.BoolVar(&o.logJSON, "log-json", false, "以 JSON 格式输出日志")
	fs.BoolVarP(&o.showVersion, "version", "v", false, "显示版本信息")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	o.autoEnableSet = fs.Changed("auto-enable")
	return o, nil
}

// domainIDs 校验并去重域号，按升序返回
func domainIDs(values []uint) ([]dcps.DomainID, error) {
	if len(values) == 0 {
		return nil, errors.New("至少需要一个域号")
	}
	seen := make(map[uint]struct{}, len(values))
	ids := make([]dcps.DomainID, 0, len(values))
	for _, v := range values {
		if v > uint(dcps.MaxDomainID) {
			return nil, fmt.Errorf("域号 %d 超出范围 [0, %d]", v, dcps.MaxDomainID)
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		ids = append(ids, dcps.DomainID(v))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (o *cliOptions) factoryOptions() []dcps.Option {
	var opts []dcps.Option
	if o.configFile != "" {
		opts = append(opts, dcps.WithConfigFile(o.configFile))
	}
	if o.entityName != "" {
		opts = append(opts, dcps.WithEntityName(o.entityName))
	}
	if o.autoEnableSet {
		opts = append(opts, dcps.WithAutoEnable(o.autoEnable))
	}
	return opts
}

// ═══════════════════════════════════════════════════════════════════════════
// 主流程
// ═══════════════════════════════════════════════════════════════════════════

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	o, err := parseFlags(args, out)
	if err != nil {
		return err
	}
	if o.showVersion {
		fmt.Fprintln(out, dcps.VersionInfo())
		return nil
	}
	if o.logJSON {
		log.SetOutputJSON(os.Stderr)
	}

	ids, err := domainIDs(o.domains)
	if err != nil {
		return err
	}

	f, err := dcps.Start(ctx, o.factoryOptions()...)
	if err != nil {
		return fmt.Errorf("启动工厂失败: %w", err)
	}
	defer func() { _ = f.Close() }()

	logger.Info("创建参与者", "domains", len(ids))
	participants, createErr := createAll(f, ids)

	printLookups(out, f, ids)

	if createErr == nil && o.hold {
		fmt.Fprintln(out, "参与者已创建，按 Ctrl+C 删除并退出")
		<-ctx.Done()
	}

	deleteErr := deleteAll(f, participants)
	return multierr.Append(createErr, deleteErr)
}

// createAll 并发创建参与者，返回成功创建的部分
func createAll(f *dcps.Factory, ids []dcps.DomainID) ([]*dcps.Participant, error) {
	created := make([]*dcps.Participant, len(ids))
	var g errgroup.Group
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			p, err := f.CreateParticipant(id, dcps.ParticipantQosDefault, nil, dcps.StatusMaskNone)
			if err != nil {
				return fmt.Errorf("%s: %s: %w", id, dcps.ReturnCodeOf(err), err)
			}
			created[i] = p
			return nil
		})
	}
	err := g.Wait()

	out := created[:0]
	for _, p := range created {
		if p != nil {
			out = append(out, p)
		}
	}
	return out, err
}

func deleteAll(f *dcps.Factory, participants []*dcps.Participant) error {
	var errs error
	for _, p := range participants {
		if err := f.DeleteParticipant(p); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("delete %s: %s: %w", p.Domain(), dcps.ReturnCodeOf(err), err))
		}
	}
	return errs
}

func printLookups(out io.Writer, f *dcps.Factory, ids []dcps.DomainID) {
	for _, id := range ids {
		p := f.LookupParticipant(id)
		if p == nil {
			fmt.Fprintf(out, "%-12s  -\n", id)
			continue
		}
		fmt.Fprintf(out, "%-12s  handle=%d guid=%s enabled=%t secure=%t\n",
			id, p.Handle(), p.GUIDPrefix(), p.Enabled(), p.Security().Enabled)
	}
}
